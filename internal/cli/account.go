package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account registration and login",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountMeCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var name, email, pass, role, file string
	var sets []string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long: `Register a new account.

The initial profile comes from --file (a JSON edit body, "-" for stdin) and
--set shared fields, e.g. --set first_name=Mia --set last_name=Brunner.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := buildEditBody(file, sets, "")
			if err != nil {
				return err
			}

			req := map[string]any{
				"display_name": name,
				"email":        email,
				"password":     pass,
				"role":         role,
				"profile":      profile,
			}
			var result RegisterResult

			err = client.Post("/api/v1/accounts/register", req, &result)

			// ALL_FAILED arrives as 502 with the registration body; the account exists
			var se *StatusError
			if errors.As(err, &se) && se.Status == http.StatusBadGateway {
				if jsonErr := json.Unmarshal(se.Body, &result); jsonErr == nil && result.SessionToken != "" {
					err = nil
				}
			}
			if err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)

			if result.Outcome.Status != "ALL_SUCCEEDED" {
				return fmt.Errorf("account created but profile not fully saved (%s); retry with 'profile edit'",
					result.Outcome.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	cmd.Flags().StringVar(&role, "role", "PLAYER_ONLY", "Role: PLAYER_ONLY, RECRUITER_ONLY or DUAL")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the initial profile")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Shared field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"email":    email,
				"password": pass,
			}
			var result AuthResult

			if err := client.Post("/api/v1/accounts/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Get("/api/v1/accounts/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
