package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/domspec/packages/core/config"
)

var (
	forceInit bool
	tomlInit  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new domspec project",
	Long: `Initialize a new domspec project in the current directory.

This creates:
  - domspec.json          - Configuration file with environments
  - example.html          - A small page to check
  - example.domspec.yaml  - Example checks against that page

Examples:
  domspec init
  domspec init --toml
  domspec init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().BoolVar(&tomlInit, "toml", false, "Write domspec.toml instead of domspec.json")
}

const examplePage = `<!DOCTYPE html>
<html lang="en">
<head><title>Sign in</title></head>
<body>
  <form data-testid="login" aria-describedby="login-help">
    <p id="login-help">Use your work account.</p>
    <label for="email">Email</label>
    <input id="email" name="email" type="email" required>
    <label><input type="checkbox" name="remember" data-testid="remember"> Remember me</label>
    <button data-testid="submit" type="submit" class="btn btn-primary" disabled>Sign in</button>
  </form>
</body>
</html>
`

const exampleChecks = `name: Sign in page
page: example.html
variables:
  email: jane@example.com

checks:
  - name: submit starts disabled
    tags: [smoke]
    target: {testid: submit}
    expect:
      - to.be.disabled
      - and.to.have.class: btn-primary
      - and.to.have.accessibleName
      - that.equals: Sign in

  - name: email is required
    target: {id: email}
    expect:
      - to.be.required
      - and.to.be.invalid

  - name: typing an email makes it valid
    depends: [email is required]
    target: {id: email}
    actions:
      - focus
      - set-value: "{{email}}"
    expect:
      - to.have.focus
      - and.to.be.valid
      - and.to.have.value
      - that.equals: "{{email}}"

  - name: remember me toggles
    target: {testid: remember}
    actions: [click]
    expect: [to.be.checked]

  - name: form is described
    target: {testid: login}
    expect:
      - to.contain: {testid: submit}
      - and.to.have.description
      - that.equals: Use your work account.
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configName := "domspec.json"
	if tomlInit {
		configName = "domspec.toml"
	}
	configFile := filepath.Join(cwd, configName)
	pageFile := filepath.Join(cwd, "example.html")
	exampleFile := filepath.Join(cwd, "example.domspec.yaml")

	if !forceInit {
		for _, f := range []string{configFile, pageFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Environments = map[string]map[string]any{
		"dev":     {"baseUrl": "http://localhost:3000"},
		"staging": {"baseUrl": "https://staging.example.com"},
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	for path, content := range map[string]string{pageFile: examplePage, exampleFile: exampleChecks} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\ndomspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'domspec run example.domspec.yaml' to execute the example checks.\n")

	return nil
}
