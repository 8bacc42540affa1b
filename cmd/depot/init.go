package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/depot/internal/config"
	"github.com/vango-dev/depot/internal/errors"
)

const starterStores = `stores:
  - id: counter
    state:
      count: 0
    getters:
      double: count * 2
    actions:
      increment:
        set:
          count: count + 1
        return: count
`

func initCmd() *cobra.Command {
	var (
		name    string
		backend string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a depot.json and a starter definition file",
		Long: `Create depot.json with default settings in the given directory
(default: the working directory). A starter stores.yaml is written when
the definition file does not exist yet.

With --force an existing depot.json is rewritten in place, keeping its
settings and applying the flags given.

Examples:
  depot init
  depot init ./app --backend=sqlite
  depot init --force --name=shop`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.New("D040").Wrap(err)
			}

			var cfg *config.Config
			if config.Exists(dir) {
				if !force {
					return errors.New("D040").
						WithDetailf("%s already exists in %s", config.ConfigFileName, dir).
						WithSuggestion("Use --force to rewrite it")
				}
				loaded, err := config.Load(dir)
				if err != nil {
					return err
				}
				cfg = loaded
			} else {
				cfg = config.New()
			}

			if name != "" {
				cfg.Name = name
			} else if cfg.Name == "" {
				if abs, err := filepath.Abs(dir); err == nil {
					cfg.Name = filepath.Base(abs)
				}
			}
			if backend != "" {
				cfg.Persist.Backend = backend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Path() != "" {
				if err := cfg.Save(); err != nil {
					return err
				}
			} else if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			success(w, "Wrote %s", cfg.Path())

			defs := cfg.DefinitionsPath()
			if _, err := os.Stat(defs); os.IsNotExist(err) {
				if err := os.WriteFile(defs, []byte(starterStores), 0644); err != nil {
					return errors.New("D040").Wrap(err)
				}
				success(w, "Wrote %s", defs)
			} else {
				info(w, "Keeping %s", defs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (default: directory name)")
	cmd.Flags().StringVar(&backend, "backend", "", "Persistence backend: none, memory, file, sqlite or s3")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rewrite an existing depot.json")

	return cmd
}
