package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/depot/pkg/declare"
	"github.com/vango-dev/depot/pkg/store"
)

func validateCmd(configPath *string) *cobra.Command {
	var definitions string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check depot.json and the store definitions",
		Long: `Validate the configuration, compile every expression of the
definition file and build each store once without plugins.

Examples:
  depot validate
  depot validate --definitions=stores/cart.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if definitions != "" {
				cfg.Definitions = definitions
			}
			w := cmd.OutOrStdout()
			success(w, "Configuration is valid")

			file, err := declare.Load(cfg.DefinitionsPath())
			if err != nil {
				return err
			}

			c := store.New(store.WithLogger(newLogger(cfg, cmd.ErrOrStderr())))
			defer c.Dispose()
			for _, def := range file.Definitions() {
				s, err := def.Use(c)
				if err != nil {
					return err
				}
				success(w, "%s: %d fields, %d getters, %d actions",
					s.ID(), len(s.State().Keys()), len(s.GetterNames()), len(s.ActionNames()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&definitions, "definitions", "d", "", "Store definition file (default from depot.json)")

	return cmd
}
