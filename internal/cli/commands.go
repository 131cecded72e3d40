package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xab-mack/tactscan/internal/config"
	"github.com/xab-mack/tactscan/internal/engine"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/loader"
	"github.com/xab-mack/tactscan/internal/log"
	"github.com/xab-mack/tactscan/internal/model"
	"github.com/xab-mack/tactscan/internal/report"
	"github.com/xab-mack/tactscan/internal/store"
	"github.com/xab-mack/tactscan/internal/tui"
)

func AddCommands(root *cobra.Command) {
	root.AddCommand(newCheckCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newDetectorsCmd())
}

func newCheckCmd() *cobra.Command {
	var (
		format        string
		failOn        string
		outputFile    string
		useTUI        bool
		baselinePath  string
		writeBaseline string
		dumpIR        string
		verbose       bool
	)
	cmd := &cobra.Command{
		Use:   "check [path]...",
		Short: "Analyze one or more projects and report warnings",
		Long: "Loads the front end's AST export for each project path, builds the IR,\n" +
			"runs every enabled detector and reports positioned warnings. Passing\n" +
			"several paths analyzes them as sibling projects, which enables\n" +
			"cross-project reconciliation for intersect-policy detectors.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Setup(verbose, false)
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}

			cfg, cfgPath, err := config.Load(paths[0])
			if err != nil {
				return err
			}
			if cfgPath != "" {
				log.Debug("loaded config", "path", cfgPath)
			}

			var units []*ir.CompilationUnit
			for _, p := range paths {
				unit, err := loader.LoadUnit(p)
				if err != nil {
					return err
				}
				units = append(units, unit)
			}
			if dumpIR != "" {
				for _, u := range units {
					if err := store.WriteUnit(dumpIR, u); err != nil {
						return err
					}
				}
			}

			eng := engine.New(cfg)
			warnings, err := eng.Run(cmd.Context(), units)
			if err != nil {
				return err
			}

			if baselinePath != "" {
				b, err := engine.LoadBaseline(baselinePath)
				if err != nil {
					return err
				}
				warnings = engine.FilterByBaseline(warnings, b)
			}
			if writeBaseline != "" {
				if err := engine.WriteBaseline(writeBaseline, warnings); err != nil {
					return err
				}
			}

			if useTUI {
				return tui.Run(warnings)
			}
			switch format {
			case "json":
				data, err := json.MarshalIndent(warnings, "", "  ")
				if err != nil {
					return err
				}
				if outputFile != "" {
					return os.WriteFile(outputFile, data, 0o644)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "sarif":
				data, err := report.ToSARIF(warnings)
				if err != nil {
					return err
				}
				if outputFile != "" {
					return os.WriteFile(outputFile, data, 0o644)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				fmt.Fprint(cmd.OutOrStdout(), report.Table(warnings))
			}

			if failOn != "" {
				threshold := model.ParseSeverity(failOn)
				for _, w := range warnings {
					if model.SeverityGTE(w.Severity, threshold) {
						return fmt.Errorf("fail-on threshold met: %s", w.Severity)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|sarif")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero when a warning of this severity or higher is found")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write the report to a file (json/sarif formats)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse warnings interactively")
	cmd.Flags().StringVar(&baselinePath, "baseline", "", "Filter warnings already accepted in a baseline file")
	cmd.Flags().StringVar(&writeBaseline, "write-baseline", "", "Write a baseline file with warning fingerprints")
	cmd.Flags().StringVar(&dumpIR, "dump-ir", "", "Dump the IR to a SQLite database at the given path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}
