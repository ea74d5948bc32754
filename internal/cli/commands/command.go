package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"ProductManager/internal/config"
)

// ErrUsage makes the dispatcher print the command usage.
var ErrUsage = errors.New("usage")

// Command is one pmcli subcommand.
type Command interface {
	Name() string
	Description() string
	// Usage is shown on ErrUsage, e.g. "product-delete <id>".
	Usage() string
	// Run gets the arguments after the command name.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

var registry = map[string]Command{}

// accountCommands are listed under "Account" in the help; the rest under "Products".
var accountCommands = map[string]bool{"register": true, "login": true, "logout": true, "status": true}

// Out is where commands print. Tests replace it.
var Out io.Writer = os.Stdout

// RegisterCmd is called from the init of each command file.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds the help text, account commands first.
func FormatGlobalUsage() string {
	lines := []string{
		"ProductManager CLI",
		"",
		"Usage:",
		"  pmcli [--base-url <host:port>] [--debug] <command> [args]",
	}
	var account, products []string
	for _, c := range List() {
		line := fmt.Sprintf("  %-52s %s", c.Usage(), c.Description())
		if accountCommands[c.Name()] {
			account = append(account, line)
		} else {
			products = append(products, line)
		}
	}
	if len(account) > 0 {
		lines = append(lines, "", "Account:")
		lines = append(lines, account...)
	}
	if len(products) > 0 {
		lines = append(lines, "", "Products:")
		lines = append(lines, products...)
	}
	return strings.Join(lines, "\n") + "\n"
}
