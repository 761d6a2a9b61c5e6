package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/domspec/packages/core/config"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|directory]...",
	Short: "Validate domspec files against the check file schema",
	Long: `Validate domspec files without executing them. Each file is checked
against the embedded JSON schema, then for duplicate names and unknown
dependencies.

Examples:
  domspec validate login.domspec.yaml
  domspec validate ./checks/
  domspec validate --schema > domspec.schema.json`,
	RunE: validateCommand,
}

var printSchemaFlag bool

func init() {
	validateCmd.Flags().BoolVar(&printSchemaFlag, "schema", false, "Print the check file JSON schema and exit")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	if printSchemaFlag {
		_, err := cmd.OutOrStdout().Write(parser.Schema())
		return err
	}

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

	hasErrors := false
	for _, file := range files {
		_, err := parser.ParseFile(file)
		if err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
			continue
		}
		hasErrors = true

		var se *parser.SchemaError
		if errors.As(err, &se) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s:\n", file)
			for _, issue := range se.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", issue)
			}
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}
