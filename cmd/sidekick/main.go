package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	versionInfo := VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	registry := NewCommandRegistry(versionInfo)
	registerCommands(registry)

	if err := registry.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func registerCommands(r *CommandRegistry) {
	r.Register(&Command{
		Name:        "validate",
		Description: "Validate sidekick configuration files",
		Usage:       "sidekick validate <config-file> [flags]",
		Examples: []string{
			"sidekick validate sidekick.yaml",
			"sidekick validate sidekick.yaml --quiet",
		},
		Run: validateCommand,
	})

	// Register call command (data-plane debugging)
	r.Register(&Command{
		Name:        "call",
		Description: "Exercise a running sidecar (data-plane debugging)",
		Usage:       "sidekick call <subcommand> [flags]",
		Examples: []string{
			"sidekick call state get --store statestore --key order-1",
			"sidekick call state set --store statestore --key order-1 --value '{\"qty\":2}'",
			"sidekick call publish --pubsub messagebus --topic orders --data '{\"id\":1}'",
			"sidekick call secret --store vault1 --key apikey",
		},
		Run: callCommand,
	})

	r.Register(&Command{
		Name:        "deploy",
		Description: "Manage local clusters and the Dapr control plane",
		Usage:       "sidekick deploy <subcommand> [arguments] [flags]",
		Examples: []string{
			"sidekick deploy cluster create --name sidekick-test",
			"sidekick deploy dapr install",
			"sidekick deploy dapr status",
			"sidekick deploy cluster delete --name sidekick-test",
		},
		Run: deployCommand,
	})

	r.Register(&Command{
		Name:        "version",
		Description: "Show version information",
		Usage:       "sidekick version [flags]",
		Examples: []string{
			"sidekick version",
			"sidekick version --verbose",
		},
		Run: versionCommand,
	})

	r.Register(&Command{
		Name:        "help",
		Description: "Show help information",
		Usage:       "sidekick help [command]",
		Examples: []string{
			"sidekick help",
			"sidekick help call",
		},
		Run: func(args []string) error {
			r.PrintHelp(os.Stdout)
			return nil
		},
	})
}
