package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ProductManager/internal/cli/api"
	"ProductManager/internal/cli/bootstrap"
	"ProductManager/internal/cli/repo"
	"ProductManager/internal/config"
)

type statusResponse struct {
	UserID string `json:"user_id"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show the session and check it against the server" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	sess, err := bootstrap.AuthService(cfg).Session()
	if errors.Is(err, repo.ErrNoSession) {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	resp, body, err := api.PostJSON(ctx, api.Endpoint(cfg.ServerURL, "/api/user/status"), struct{}{}, sess.Token)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("session rejected by server: run login")
	}
	if resp.StatusCode != http.StatusOK {
		return api.NewStatusError(resp.StatusCode, body)
	}
	var sr statusResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintf(Out, "Logged in as %s (user id %s)\n", sess.Email, sr.UserID)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
