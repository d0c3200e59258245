package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tansive/spore/pkg/spore/request"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain a user token from the API",
		Long: `Call the authentication method of the spec and store the returned token in
the configuration file. Later calls send it in the X-Weborama-UserAuthToken
header.

The login process requires:
- A spec declaring the authentication method (get_authentication_token by default)
- The signing keys and the user email in the configuration
- A password (provided via --passwd or stored in config)

Example:
  spore login --passwd=mypassword
  spore login  # uses password from config file`,
		RunE: runLogin,
	}

	cmd.Flags().String("passwd", "", "Password for authentication")
	cmd.Flags().String("method", "get_authentication_token", "Spec method returning the token")
	cmd.Flags().String("token-path", "token", "gjson path of the token in the answer")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	passwd, _ := cmd.Flags().GetString("passwd")
	method, _ := cmd.Flags().GetString("method")
	tokenPath, _ := cmd.Flags().GetString("token-path")

	if err := login(cmd.Context(), cfg, passwd, method, tokenPath); err != nil {
		return err
	}
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]any{
			"status":  "success",
			"message": "Login successful",
		})
	} else {
		okLabel.Println("✓ Login successful")
	}
	return nil
}

// login calls the authentication method and stores the token in cfg. A
// password given on the command line is never copied into cfg.
func login(ctx context.Context, cfg *Config, passwd, method, tokenPath string) error {
	if passwd == "" {
		passwd = cfg.Password
		if passwd == "" {
			return fmt.Errorf("no password provided. Use --passwd flag or set password in config file")
		}
	}

	// a stale token must not be sent with the login call
	loginCfg := *cfg
	loginCfg.Token = ""
	client, err := newClient(ctx, &loginCfg)
	if err != nil {
		return err
	}

	resp, err := client.InvokeOrdered(ctx, method, request.NewArgs(
		"format", "json",
		"email", cfg.UserEmail,
		"password", passwd,
	))
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if resp.Status >= 400 {
		return fmt.Errorf("login failed with status %d", resp.Status)
	}
	token := resp.Get(tokenPath).String()
	if token == "" {
		return fmt.Errorf("no token at %q in the login answer", tokenPath)
	}
	cfg.Token = token
	return nil
}
