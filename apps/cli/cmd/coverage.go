package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/core/config"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
	"github.com/abdul-hamid-achik/domspec/packages/coverage"
	"github.com/abdul-hamid-achik/domspec/packages/domassert"
)

var (
	coverageFormatFlag string
	coverageMinFlag    float64
)

var coverageCmd = &cobra.Command{
	Use:   "coverage [file|directory]...",
	Short: "Report which assertion words the checks use",
	Long: `Report how much of the assertion vocabulary the checks in .domspec.yaml
files exercise. Words the vocabulary does not know are listed separately.

Examples:
  domspec coverage ./checks/
  domspec coverage ./checks/ --format json
  domspec coverage ./checks/ --min 40`,
	RunE: coverageCommand,
}

func init() {
	coverageCmd.Flags().StringVarP(&coverageFormatFlag, "format", "f", "console", "Report format: console, json, yaml")
	coverageCmd.Flags().Float64Var(&coverageMinFlag, "min", 0, "Fail when coverage is below this percentage")
}

func coverageCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	files, err := collectFiles(args, fileConfig.Include)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .domspec.yaml files found"))
	}

	reg := chain.NewRegistry()
	domassert.Register(reg)
	analyzer := coverage.NewAnalyzer(reg)
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			return withExitCode(ExitParseError, err)
		}
		analyzer.AddFile(f)
	}
	report := analyzer.Analyze()

	var out string
	switch coverageFormatFlag {
	case "console":
		out = report.FormatConsole()
	case "json":
		out, err = report.FormatJSON()
	case "yaml":
		out, err = report.FormatYAML()
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown coverage format %q", coverageFormatFlag))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if report.CoveragePercent < coverageMinFlag {
		return withExitCode(ExitTestFailure, fmt.Errorf("coverage %.1f%% is below %.1f%%", report.CoveragePercent, coverageMinFlag))
	}
	return nil
}
