package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit the current account's profiles",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileEditCmd())
	cmd.AddCommand(newProfileValidateCmd())
	cmd.AddCommand(newProfilePromoteCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show profiles with derived fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ProfileView

			if err := client.Get("/api/v1/profile", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// editFlags are shared by edit and validate
type editFlags struct {
	file       string
	sets       []string
	loadedFrom string
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `JSON edit body ("-" for stdin)`)
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Shared field as key=value (repeatable)")
	cmd.Flags().StringVar(&f.loadedFrom, "from", "", "Sub-profile the edit was based on: player or recruiter")
}

func newProfileEditCmd() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit profiles; shared fields are written to both roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := buildEditBody(flags.file, flags.sets, flags.loadedFrom)
			if err != nil {
				return err
			}

			var result EditResult
			err = client.Put("/api/v1/profile", body, &result)

			// ALL_FAILED arrives as 502 with an outcome body
			var se *StatusError
			if errors.As(err, &se) && se.Status == http.StatusBadGateway {
				if jsonErr := json.Unmarshal(se.Body, &result); jsonErr == nil && result.Status != "" {
					err = nil
				}
			}
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)

			if result.Status != "ALL_SUCCEEDED" {
				return fmt.Errorf("edit not fully saved: %s", result.Status)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newProfileValidateCmd() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an edit without saving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := buildEditBody(flags.file, flags.sets, flags.loadedFrom)
			if err != nil {
				return err
			}

			var result ValidateResult
			if err := client.Post("/api/v1/profile/validate", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)

			if !result.Valid {
				return errors.New("edit is invalid")
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newProfilePromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote",
		Short: "Add the missing role so the account holds both",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ProfileView

			if err := client.Post("/api/v1/profile/promote", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// buildEditBody merges an optional JSON edit body with key=value shared overrides
func buildEditBody(file string, sets []string, loadedFrom string) (map[string]any, error) {
	body := map[string]any{}

	if file != "" {
		data, err := readInput(file)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}

	if len(sets) > 0 {
		intent, _ := body["intent"].(map[string]any)
		if intent == nil {
			intent = map[string]any{}
		}
		shared, _ := intent["shared"].(map[string]any)
		if shared == nil {
			shared = map[string]any{}
		}
		for _, kv := range sets {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid --set %q: want key=value", kv)
			}
			shared[key] = value
		}
		intent["shared"] = shared
		body["intent"] = intent
	}

	if loadedFrom != "" {
		body["loaded_from"] = loadedFrom
	}
	return body, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
