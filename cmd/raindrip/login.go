package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"raindrip/internal/config"
	errs "raindrip/internal/errors"
	"raindrip/internal/toon"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login with your Raindrop.io API token",
	Long: `Login with your Raindrop.io API token. The token is verified against
the API before it is saved.

Example:
  raindrip login
  raindrip login --token <token>`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove your stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current user details",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "API token (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := strings.TrimSpace(loginToken)
	if token == "" {
		t, err := promptToken()
		if err != nil {
			return err
		}
		token = t
	}
	if token == "" {
		return errs.NewValidationError("no token given", "Create a test token at https://app.raindrop.io/settings/integrations.")
	}

	ctx, cancel := newContext()
	defer cancel()

	client := newClient(token)
	user, err := client.GetUser(ctx)
	if err != nil {
		return err
	}

	dir, err := configDir()
	if err != nil {
		return errs.NewInternalError(err)
	}
	creds := &config.Credentials{Token: token}
	if err := creds.Save(dir); err != nil {
		return errs.NewInternalError(err)
	}

	name, _ := user.Get("fullName")
	logger.Info("logged in", map[string]interface{}{"token": config.MaskToken(token)})
	return outputValue(toon.Object{
		{Key: "result", Value: true},
		{Key: "user", Value: name},
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	dir, err := configDir()
	if err != nil {
		return errs.NewInternalError(err)
	}
	if err := config.DeleteCredentials(dir); err != nil {
		return errs.NewInternalError(err)
	}
	return outputValue(toon.Object{{Key: "result", Value: true}})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	user, err := client.GetUser(ctx)
	if err != nil {
		return err
	}
	return outputValue(user)
}

// promptToken reads the token from the terminal without echo. Falls back
// to a plain line read when stdin is not a terminal (piped input).
func promptToken() (string, error) {
	fmt.Fprint(os.Stderr, "Enter your Raindrop.io API token: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", errs.NewInternalError(err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", errs.NewValidationError("no token given", "Pass --token or pipe the token on stdin.")
	}
	return strings.TrimSpace(line), nil
}
