// Package prefs reads the client preferences file (TOML).
package prefs

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"ProductManager/internal/cli/model"

	"github.com/pelletier/go-toml/v2"
)

// Prefs are per-user client settings.
//
//	categories = ["Electrónica", "Ropa"]
type Prefs struct {
	Categories []string `toml:"categories"`
}

// Load reads path. A missing file gives the defaults.
func Load(path string) (Prefs, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Prefs{}, err
	}
	var p Prefs
	if err := toml.Unmarshal(b, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse %s: %w", path, err)
	}
	p.Categories = normalize(p.Categories)
	if len(p.Categories) == 0 {
		p.Categories = Default().Categories
	}
	return p, nil
}

func Default() Prefs {
	return Prefs{Categories: slices.Clone(model.DefaultCategories)}
}

// normalize trims names and drops blanks and duplicates, keeping order.
func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsSuggested reports whether category is in the suggested set.
func (p Prefs) IsSuggested(category string) bool {
	return slices.Contains(p.Categories, category)
}
