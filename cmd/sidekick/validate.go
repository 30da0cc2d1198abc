package main

import (
	"flag"
	"fmt"

	"github.com/runmesh/sidekick/internal/config"
)

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "Only report errors, suppress the settings summary")

	fs.Usage = func() {
		fmt.Println(`Validate sidekick configuration files

USAGE:
    sidekick validate <config-file> [flags]

FLAGS:
    --quiet   Only report errors, suppress the settings summary

Validation resolves the file the same way the library does: environment
variables (DAPR_HTTP_PORT, DAPR_API_TOKEN, SIDEKICK_HTTP_TIMEOUT)
override file values, then defaults fill the gaps.

EXAMPLES:
    # Validate configuration
    sidekick validate sidekick.yaml

    # Use in CI/CD pipelines
    if sidekick validate config/production.yaml; then
        echo "Configuration is valid"
        kubectl apply -f deployment.yaml
    fi`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("config file path required")
	}

	configPath := fs.Arg(0)

	fc, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := config.Resolve(fc)
	if err != nil {
		return fmt.Errorf("failed to resolve config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Valid configuration: %s\n", configPath)
	if *quiet {
		return nil
	}

	fmt.Println("\nResolved settings:")
	table := NewTableWriter([]string{"Setting", "Value"})
	table.AddRow([]string{"Sidecar address", cfg.Address})
	token := "(not set)"
	if cfg.APIToken != "" {
		token = "(set)"
	}
	table.AddRow([]string{"API token", token})
	table.AddRow([]string{"Request timeout", cfg.RequestTimeout.String()})
	table.AddRow([]string{"Max idle conns", fmt.Sprintf("%d", cfg.MaxIdleConns)})
	table.AddRow([]string{"Max idle conns per host", fmt.Sprintf("%d", cfg.MaxIdleConnsPerHost)})
	table.AddRow([]string{"Idle conn timeout", cfg.IdleConnTimeout.String()})
	table.Print()

	return nil
}
