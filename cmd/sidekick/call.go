package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	sidekick "github.com/runmesh/sidekick"
)

func callCommand(args []string) error {
	fs := flag.NewFlagSet("call", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Println(`Exercise a running sidecar (data-plane debugging tool)

USAGE:
    sidekick call <subcommand> [flags]

SUBCOMMANDS:
    state      Get or set a state record
    publish    Publish an event to a pub/sub topic
    secret     Fetch a secret from a secret store
    health     Probe the sidecar health endpoint

EXAMPLES:
    # Read a state record
    sidekick call state get --store statestore --key order-1

    # Save a record, then read it back
    sidekick call state set --store statestore --key order-1 --value '{"qty":2}'
    sidekick call state get --store statestore --key order-1

    # Publish an event
    sidekick call publish --pubsub messagebus --topic orders --data '{"id":1}'

    # Fetch a secret
    sidekick call secret --store vault1 --key apikey`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing subcommand")
	}

	subcommand := fs.Arg(0)
	subArgs := fs.Args()[1:]

	switch subcommand {
	case "state":
		return callStateCommand(subArgs)
	case "publish":
		return callPublishCommand(subArgs)
	case "secret":
		return callSecretCommand(subArgs)
	case "health":
		return callHealthCommand(subArgs)
	default:
		return fmt.Errorf("unknown subcommand: %s", subcommand)
	}
}

// callFlags holds the flags shared by every call subcommand.
type callFlags struct {
	config  *string
	address *string
	timeout *time.Duration
	debug   *bool
}

func registerCallFlags(fs *flag.FlagSet) *callFlags {
	return &callFlags{
		config:  fs.String("config", "", "Path to sidekick config file (optional)"),
		address: fs.String("address", "", "Sidecar base address, overrides config (optional)"),
		timeout: fs.Duration("timeout", 30*time.Second, "Call timeout"),
		debug:   fs.Bool("debug", false, "Enable debug output"),
	}
}

func (cf *callFlags) connect() (*sidekick.Client, context.Context, context.CancelFunc, []sidekick.CallOption, error) {
	if *cf.debug {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
		log.Printf("DEBUG: config=%q address=%q timeout=%s", *cf.config, *cf.address, *cf.timeout)
	}

	var (
		client *sidekick.Client
		err    error
	)
	if *cf.config != "" {
		client, err = sidekick.ConnectFile(*cf.config)
	} else {
		client, err = sidekick.ConnectDefault()
	}
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to create sidecar client: %w", err)
	}

	var opts []sidekick.CallOption
	if *cf.address != "" {
		opts = append(opts, sidekick.WithAddress(*cf.address))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *cf.timeout)
	return client, ctx, cancel, opts, nil
}

// reportStatus renders a normalized failure for human consumption and
// returns a terse error for the exit path.
func reportStatus(err error) error {
	st, ok := sidekick.AsStatus(err)
	if !ok {
		return err
	}

	switch st.Kind {
	case sidekick.KindSidecarNotPresent:
		fmt.Fprintln(os.Stderr, "✗ Sidecar is not running (connection refused)")
		fmt.Fprintln(os.Stderr, "  Check DAPR_HTTP_PORT or start the sidecar first.")
	case sidekick.KindSidecarError:
		fmt.Fprintf(os.Stderr, "✗ Sidecar rejected the call: HTTP %d %s\n", st.StatusCode, st.ErrorCode)
		if st.Message != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", st.Message)
		}
	case sidekick.KindCancelled:
		fmt.Fprintln(os.Stderr, "✗ Call timed out or was cancelled")
	case sidekick.KindInvalidArgument:
		fmt.Fprintf(os.Stderr, "✗ Invalid argument: %s\n", st.Message)
	}
	return fmt.Errorf("%s", st.ErrorCode)
}

func callStateCommand(args []string) error {
	fs := flag.NewFlagSet("call state", flag.ExitOnError)
	cf := registerCallFlags(fs)
	store := fs.String("store", "", "State store component name (required)")
	key := fs.String("key", "", "State key (required)")
	value := fs.String("value", "", "JSON value to save (set only)")
	etag := fs.String("etag", "", "ETag for optimistic concurrency (set only)")

	fs.Usage = func() {
		fmt.Println(`Get or set a state record

USAGE:
    sidekick call state <get|set> --store <name> --key <key> [flags]

FLAGS:
    --store string      State store component name (required)
    --key string        State key (required)
    --value string      JSON value to save (set only)
    --etag string       ETag for optimistic concurrency (set only)
    --config string     Path to sidekick config file
    --address string    Sidecar base address override
    --timeout duration  Call timeout (default 30s)
    --debug             Enable debug output

EXAMPLES:
    sidekick call state get --store statestore --key order-1
    sidekick call state set --store statestore --key order-1 --value '{"qty":2}'`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing action: get or set")
	}
	action := fs.Arg(0)

	if *store == "" || *key == "" {
		fs.Usage()
		return fmt.Errorf("--store and --key are required")
	}

	client, ctx, cancel, opts, err := cf.connect()
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	switch action {
	case "get":
		record, err := client.GetState(ctx, *store, *key, opts...)
		if err != nil {
			return reportStatus(err)
		}
		if record.Value == nil {
			fmt.Printf("(no value for key %q)\n", *key)
			return nil
		}
		if record.ETag != "" {
			fmt.Fprintf(os.Stderr, "ETag: %s\n", record.ETag)
		}
		fmt.Println(string(record.Value))
		return nil

	case "set":
		if *value == "" {
			return fmt.Errorf("--value is required for set")
		}
		if !json.Valid([]byte(*value)) {
			return fmt.Errorf("--value must be valid JSON")
		}
		records := []sidekick.StateRecord{{
			Key:   *key,
			Value: json.RawMessage(*value),
			ETag:  *etag,
		}}
		if err := client.SaveState(ctx, *store, records, opts...); err != nil {
			return reportStatus(err)
		}
		fmt.Printf("✓ Saved %s/%s\n", *store, *key)
		return nil

	default:
		return fmt.Errorf("unknown state action: %s (use 'get' or 'set')", action)
	}
}

func callPublishCommand(args []string) error {
	fs := flag.NewFlagSet("call publish", flag.ExitOnError)
	cf := registerCallFlags(fs)
	pubsub := fs.String("pubsub", "", "Pub/sub component name (required)")
	topic := fs.String("topic", "", "Topic name (required)")
	data := fs.String("data", "", "JSON payload (required)")

	fs.Usage = func() {
		fmt.Println(`Publish an event to a pub/sub topic

USAGE:
    sidekick call publish --pubsub <name> --topic <topic> --data <json> [flags]

EXAMPLES:
    sidekick call publish --pubsub messagebus --topic orders --data '{"id":1}'`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *pubsub == "" || *topic == "" || *data == "" {
		fs.Usage()
		return fmt.Errorf("--pubsub, --topic and --data are required")
	}
	if !json.Valid([]byte(*data)) {
		return fmt.Errorf("--data must be valid JSON")
	}

	client, ctx, cancel, opts, err := cf.connect()
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	if err := client.PublishEvent(ctx, *pubsub, *topic, json.RawMessage(*data), opts...); err != nil {
		return reportStatus(err)
	}
	fmt.Printf("✓ Published to %s/%s\n", *pubsub, *topic)
	return nil
}

func callSecretCommand(args []string) error {
	fs := flag.NewFlagSet("call secret", flag.ExitOnError)
	cf := registerCallFlags(fs)
	store := fs.String("store", "", "Secret store component name (required)")
	key := fs.String("key", "", "Secret name (required)")

	fs.Usage = func() {
		fmt.Println(`Fetch a secret from a secret store

USAGE:
    sidekick call secret --store <name> --key <key> [flags]

EXAMPLES:
    sidekick call secret --store vault1 --key apikey`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *store == "" || *key == "" {
		fs.Usage()
		return fmt.Errorf("--store and --key are required")
	}

	client, ctx, cancel, opts, err := cf.connect()
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	secret, err := client.GetSecret(ctx, *store, *key, nil, opts...)
	if err != nil {
		return reportStatus(err)
	}

	table := NewTableWriter([]string{"Name", "Value"})
	for name, value := range secret {
		table.AddRow([]string{name, value})
	}
	table.Print()
	return nil
}

func callHealthCommand(args []string) error {
	fs := flag.NewFlagSet("call health", flag.ExitOnError)
	cf := registerCallFlags(fs)

	fs.Usage = func() {
		fmt.Println(`Probe the sidecar health endpoint

USAGE:
    sidekick call health [flags]

EXAMPLES:
    sidekick call health
    sidekick call health --address http://localhost:3501`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	client, ctx, cancel, opts, err := cf.connect()
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	if err := client.Healthz(ctx, opts...); err != nil {
		return reportStatus(err)
	}
	fmt.Printf("✓ Sidecar at %s is healthy\n", client.Address())
	return nil
}
