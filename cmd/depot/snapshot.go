package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vango-dev/depot/internal/config"
	"github.com/vango-dev/depot/internal/errors"
	"github.com/vango-dev/depot/pkg/persist"
)

func snapshotCmd(configPath *string) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or clear the saved snapshot",
		Long: `Read or delete the container snapshot in the configured backend.

Examples:
  depot snapshot show
  depot snapshot show --key=staging
  depot snapshot clear`,
	}
	cmd.PersistentFlags().StringVarP(&key, "key", "k", "", "Snapshot key (default from depot.json)")

	// withBackend opens the backend for one subcommand.
	withBackend := func(cmd *cobra.Command, fn func(b persist.Backend, key string) error) error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if cfg.Persist.Backend == config.BackendNone || cfg.Persist.Backend == config.BackendMemory {
			return errors.New("D040").
				WithDetailf("persist.backend %q keeps no snapshot between runs", cfg.Persist.Backend).
				WithSuggestion("Configure a file, sqlite or s3 backend")
		}
		b, err := openBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer b.Close()
		if key == "" {
			key = cfg.Persist.Key
		}
		return fn(b, key)
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b persist.Backend, key string) error {
				data, err := b.Load(cmd.Context(), key)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if data == nil {
					warn(w, "No snapshot saved under %q", key)
					return nil
				}
				env, err := persist.Decode(data)
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(env, "", "  ")
				if err != nil {
					return errors.New("D041").Wrap(err)
				}
				_, err = w.Write(append(out, '\n'))
				return err
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b persist.Backend, key string) error {
				if err := b.Delete(cmd.Context(), key); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Deleted snapshot %q", key)
				return nil
			})
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}
