package main

import (
	"context"
	"flag"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/runmesh/sidekick/internal/config"
)

func versionCommand(args []string) error {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Show detailed version information")

	fs.Usage = func() {
		fmt.Println(`Show version information for sidekick and surrounding tooling

USAGE:
    sidekick version [flags]

FLAGS:
    --verbose   Show detailed version information including client defaults

EXAMPLES:
    # Show sidekick version
    sidekick version

    # Show detailed information
    sidekick version --verbose`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Printf("sidekick CLI %s (commit: %s, built: %s)\n\n", version, commit, date)

	fmt.Println("Runtime Environment:")
	table := NewTableWriter([]string{"Component", "Version", "Status"})

	tools := []struct {
		name     string
		command  []string
		required bool
	}{
		{"Go", []string{"go", "version"}, true},
		{"Docker", []string{"docker", "version", "--format", "{{.Client.Version}}"}, false},
		{"kubectl", []string{"kubectl", "version", "--client", "--short"}, false},
		{"Helm", []string{"helm", "version", "--short"}, false},
		{"Kind", []string{"kind", "version"}, false},
		{"Dapr CLI", []string{"dapr", "--version"}, false},
	}

	for _, tool := range tools {
		toolVersion, err := getToolVersion(tool.command)
		status := "✓"
		if err != nil {
			if tool.required {
				status = "✗ REQUIRED"
			} else {
				status = "○ Optional"
			}
			toolVersion = "not found"
		}
		table.AddRow([]string{tool.name, toolVersion, status})
	}

	table.Print()

	if *verbose {
		fmt.Println("\nClient Defaults:")
		printClientDefaults()
	}

	return nil
}

func printClientDefaults() {
	table := NewTableWriter([]string{"Setting", "Value"})
	table.AddRow([]string{"Sidecar port", fmt.Sprintf("%d (via %s)", config.DefaultHTTPPort, config.EnvHTTPPort)})
	table.AddRow([]string{"Request timeout", config.DefaultRequestTimeout.String()})
	table.AddRow([]string{"API token env", config.EnvAPIToken})
	table.AddRow([]string{"Timeout env", config.EnvRequestTimeout})
	table.Print()
}

func getToolVersion(command []string) (string, error) {
	// Validate command is in allowed list for security
	allowedCommands := map[string]bool{
		"go":      true,
		"docker":  true,
		"kubectl": true,
		"helm":    true,
		"kind":    true,
		"dapr":    true,
	}

	if len(command) == 0 || !allowedCommands[command[0]] {
		return "", fmt.Errorf("unsupported command: %v", command)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, command[0], command[1:]...) // #nosec G204 - command validated against allowlist
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}

	result := strings.TrimSpace(string(output))

	// Extract version for different tools
	switch command[0] {
	case "go":
		// "go version go1.21.0 linux/amd64" -> "go1.21.0"
		parts := strings.Fields(result)
		if len(parts) >= 3 {
			return parts[2], nil
		}
	case "kubectl":
		// "Client Version: v1.28.0" -> "v1.28.0"
		result = strings.TrimPrefix(result, "Client Version: ")
	case "kind":
		// "kind version 0.30.0" -> "0.30.0"
		result = strings.TrimPrefix(result, "kind version ")
	case "helm":
		// "v3.12.0+g123abc" -> "v3.12.0"
		if idx := strings.Index(result, "+"); idx > 0 {
			result = result[:idx]
		}
	case "dapr":
		// "CLI version: 1.13.0 \nRuntime version: 1.13.5" -> first line value
		if line, _, ok := strings.Cut(result, "\n"); ok {
			result = line
		}
		result = strings.TrimSpace(strings.TrimPrefix(result, "CLI version:"))
	}

	return result, nil
}
