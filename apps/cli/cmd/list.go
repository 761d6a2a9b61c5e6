package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/domspec/packages/core/config"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
)

var listCmd = &cobra.Command{
	Use:   "list [file|directory]...",
	Short: "List all checks in domspec files",
	Long: `List the checks defined in .domspec.yaml files with their targets,
tags and dependencies.

Examples:
  domspec list login.domspec.yaml
  domspec list ./checks/`,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(out, "\n%s:\n", file)
		for _, check := range f.Checks {
			fmt.Fprintf(out, "  - %s (%s)\n", check.Name, check.Target)
			if len(check.Tags) > 0 {
				fmt.Fprintf(out, "    tags: %s\n", strings.Join(check.Tags, ", "))
			}
			if len(check.Depends) > 0 {
				fmt.Fprintf(out, "    depends: %s\n", strings.Join(check.Depends, ", "))
			}
			if check.Skip != "" {
				fmt.Fprintf(out, "    skip: %s\n", check.Skip)
			}
		}
	}

	return nil
}
