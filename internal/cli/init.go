package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xab-mack/tactscan/internal/config"
	"github.com/xab-mack/tactscan/internal/detectors"
)

func newInitCmd() *cobra.Command {
	var (
		dir string
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a " + config.FileName + " in the target directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !yes {
				if err := runInitForm(&cfg); err != nil {
					return err
				}
			}
			b, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.FileName)
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the config file to")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept defaults without prompting")
	return cmd
}

func runInitForm(cfg *config.Config) error {
	reg := detectors.NewRegistry()
	reg.RegisterBuiltin()
	var opts []huh.Option[string]
	for _, name := range reg.Names() {
		opts = append(opts, huh.NewOption(name, name))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Minimum severity to report").
				Options(
					huh.NewOption("info", "info"),
					huh.NewOption("low", "low"),
					huh.NewOption("medium", "medium"),
					huh.NewOption("high", "high"),
				).
				Value(&cfg.SeverityThreshold),
			huh.NewMultiSelect[string]().
				Title("Enabled detectors (none selected = all)").
				Options(opts...).
				Value(&cfg.Detectors),
			huh.NewInput().
				Title("Soufflé binary").
				Value(&cfg.Souffle.Binary),
		),
	)
	return form.Run()
}
