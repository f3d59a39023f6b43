package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/config"
	"github.com/lionelberton/openvpn-auth-radius/pkg/credential"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
	"github.com/lionelberton/openvpn-auth-radius/pkg/orchestrator"
)

// parseInput reads "Name = value" lines. Blank lines and # comments are skipped.
func parseInput(scanner *bufio.Scanner) (map[string]string, error) {
	values := make(map[string]string)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid input format: %q (expected 'Name = value')", line)
		}

		values[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return values, nil
}

func printResult(w io.Writer, res *orchestrator.Result) {
	for _, trace := range res.Servers {
		if trace.Skipped {
			fmt.Fprintf(w, "%s: skipped\n", trace.Server)
			continue
		}

		for _, o := range trace.Outcomes {
			if o.Err != nil {
				fmt.Fprintf(w, "%s [%s]: %s (%v)\n", o.Server, o.Round, o.Kind, o.Err)
			} else {
				fmt.Fprintf(w, "%s [%s]: %s\n", o.Server, o.Round, o.Kind)
			}
			for _, attr := range o.Attributes {
				fmt.Fprintf(w, "\t%s\n", attr)
			}
		}
	}

	fmt.Fprintf(w, "Verdict: %s", res.Verdict)
	if res.Verdict == orchestrator.Success {
		fmt.Fprintf(w, " (%s via %s)", res.Winner, res.Via)
	}
	fmt.Fprintln(w)
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Configuration file")
	action := flag.String("action", "auth", "Action: auth, acct-on or acct-off")
	station := flag.String("calling-station", "", "Calling-Station-Id to send")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall deadline")
	level := flag.String("log-level", "warn", "Log level written to stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config <file>] [-action <auth|acct-on|acct-off>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nFor auth, credentials are read from stdin, one per line in format:\n")
		fmt.Fprintf(os.Stderr, "  User-Name = alice\n")
		fmt.Fprintf(os.Stderr, "  User-Password = secret\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  printf 'User-Name = alice\\nUser-Password = secret\\n' | %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -action acct-on -config ./config.yaml\n", os.Args[0])
	}

	flag.Parse()

	var kind orchestrator.EventKind
	switch *action {
	case "auth":
	case "acct-on":
		kind = orchestrator.EventAccountingOn
	case "acct-off":
		kind = orchestrator.EventAccountingOff
	default:
		fmt.Fprintf(os.Stderr, "Error: Invalid action %q (must be 'auth', 'acct-on' or 'acct-off')\n\n", *action)
		flag.Usage()
		os.Exit(1)
	}

	logger := log.NewLoggerWithLevel(*level)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	nas, err := cfg.ToNAS()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	opts := orchestrator.Options{NAS: nas, Parallelism: cfg.Parallelism}
	exchanger := client.New(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var res *orchestrator.Result

	if kind == 0 {
		values, err := parseInput(bufio.NewScanner(os.Stdin))
		if err != nil {
			logger.Fatalf("Failed to parse input: %v", err)
		}

		username := values["User-Name"]
		if username == "" {
			logger.Fatal("Error: User-Name is required")
		}

		cred, err := credential.Parse(username, values["User-Password"])
		if err != nil {
			logger.Fatalf("Invalid password field: %v", err)
		}

		res, err = orchestrator.NewAuthenticator(exchanger, logger, opts).Authenticate(ctx, orchestrator.AuthRequest{
			Credential:     cred,
			CallingStation: *station,
		}, cfg.ToTargets())
		if err != nil {
			logger.Fatalf("Request failed: %v", err)
		}
	} else {
		res, err = orchestrator.NewAccountant(exchanger, logger, opts).Account(ctx, orchestrator.AccountingEvent{
			Kind:      kind,
			Timestamp: time.Now(),
		}, cfg.ToTargets())
		if err != nil {
			logger.Fatalf("Request failed: %v", err)
		}
	}

	printResult(os.Stdout, res)

	if res.Verdict == orchestrator.Success {
		os.Exit(0)
	}
	os.Exit(1)
}
