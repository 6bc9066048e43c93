package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/config"
	"github.com/cleared-dev/bankmint/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankmint project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, currency)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "USD", "default currency for files without a currency column")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, currency string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name)
	cfg.Business.Currency = currency

	// Create directory structure.
	dirs := []string{
		filepath.Dir(cfg.DBPath(dir)),
		cfg.LogDir(dir),
		cfg.ImportDir(dir),
		filepath.Join(cfg.ImportDir(dir), "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := category.NewCatalog(category.Defaults()).Save(dir); err != nil {
		return fmt.Errorf("writing category catalog: %w", err)
	}

	// Write .gitignore.
	gitignore := "data/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(cfg.ImportDir(dir), ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Create the database schema.
	st, err := store.Open(cfg.DBPath(dir))
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized bankmint project at %s\n", dir)
	return nil
}
