package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/config"
	"github.com/lionelberton/openvpn-auth-radius/pkg/credential"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
	"github.com/lionelberton/openvpn-auth-radius/pkg/openvpn"
	"github.com/lionelberton/openvpn-auth-radius/pkg/orchestrator"
)

type app struct {
	logger   log.Logger
	servers  []client.Server
	opts     orchestrator.Options
	env      *openvpn.Environment
	exchange client.Exchanger
}

func usage(fs *flag.FlagSet, stderr io.Writer) func() {
	return func() {
		modes := make([]string, 0, len(openvpn.Modes()))
		for _, m := range openvpn.Modes() {
			modes = append(modes, string(m))
		}

		fmt.Fprintf(stderr, "Usage: %s [flags] <mode> [args]\n\n", fs.Name())
		fmt.Fprintf(stderr, "Modes: %s\n\n", strings.Join(modes, ", "))
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  %s Authentication /tmp/openvpn_up_xxxx.tmp\n", fs.Name())
		fmt.Fprintf(stderr, "  %s ClientDisconnect\n", fs.Name())
		fmt.Fprintf(stderr, "  %s init /etc/openvpn/radius/config.yaml\n", fs.Name())
	}
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer, lookup openvpn.LookupFunc) (code int) {
	fs := flag.NewFlagSet("openvpn-radius", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "configuration file (default $OPENVPN_RADIUS_CONFIG or "+config.DefaultConfigPath+")")
	logDir := fs.String("log-dir", "", "log directory, overrides log.dir")
	logLevel := fs.String("log-level", "", "log level, overrides log.level")
	force := fs.Bool("force", false, "init: overwrite an existing file")
	fs.Usage = usage(fs, stderr)

	if err := fs.Parse(args); err != nil {
		return ExitBadMode
	}

	if fs.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: mode is required\n\n")
		fs.Usage()
		return ExitBadMode
	}

	mode, err := openvpn.ParseMode(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fs.Usage()
		return ExitBadMode
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfigInvalid
	}
	if *configPath != "" {
		settings.Config = *configPath
	}
	if *logDir != "" {
		settings.LogDir = *logDir
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}

	if mode == openvpn.ModeInit {
		path := settings.Config
		if fs.NArg() > 1 {
			path = fs.Arg(1)
		}
		if err := config.WriteSample(path, *force); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitConfigInvalid
		}
		fmt.Fprintf(stderr, "Sample configuration written to %s\n", path)
		return ExitSuccess
	}

	cfg, err := settings.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	logger := log.NewLoggerWithLevel(cfg.Log.Level)

	versionTag := settings.VersionTag
	if versionTag == "" {
		versionTag = version
	}

	files, err := log.OpenRunFiles(log.FileOptions{
		Dir:           cfg.Log.Dir,
		Version:       versionTag,
		RetentionDays: cfg.Log.RetentionDays,
		MaxFiles:      cfg.Log.MaxFiles,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitLogDir
	}
	defer files.Close()
	files.Attach(logger.GetLogrus())

	defer func() {
		if rec := recover(); rec != nil {
			code = failureCode(mode)
			logger.Errorf("unhandled panic: %v", rec)
			fmt.Fprintf(files.ErrorWriter(), "%s\n", debug.Stack())
		}
	}()

	nas, err := cfg.ToNAS()
	if err != nil {
		logger.Errorf("invalid configuration: %v", err)
		return ExitConfigInvalid
	}

	a := &app{
		logger:   logger.WithField("mode", string(mode)),
		servers:  cfg.ToTargets(),
		opts:     orchestrator.Options{NAS: nas, Parallelism: cfg.Parallelism},
		env:      openvpn.NewEnvironment(lookup),
		exchange: client.New(logger),
	}
	a.logger.Infof("openvpn-radius %s started, %d server(s) configured", version, len(a.servers))

	if mode == openvpn.ModeAuthentication {
		code = a.authenticate(ctx, fs.Args()[1:])
	} else {
		code = a.account(ctx, mode)
	}

	a.logger.Infof("exit code %d", code)
	return code
}

// failureCode is returned when the mode could not complete.
func failureCode(mode openvpn.Mode) int {
	if mode == openvpn.ModeAuthentication {
		return ExitAuthFailed
	}
	return ExitAccountingFailed
}

func (a *app) authenticate(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.logger.Error("credential file argument missing")
		return ExitCredentialMissing
	}

	cred, err := credential.ReadFile(args[0])
	if err != nil {
		a.logger.Errorf("failed to read credentials: %v", err)
		return exitCode(err)
	}

	auth := orchestrator.NewAuthenticator(a.exchange, a.logger, a.opts)
	res, err := auth.Authenticate(ctx, orchestrator.AuthRequest{
		Credential:     cred,
		CallingStation: a.env.CallerAddress(),
	}, a.servers)
	if err != nil {
		a.logger.Errorf("authentication not attempted: %v", err)
		return exitCode(err)
	}

	if res.Verdict != orchestrator.Success {
		return ExitAuthFailed
	}
	return ExitSuccess
}

func (a *app) account(ctx context.Context, mode openvpn.Mode) int {
	kind, ok := mode.EventKind()
	if !ok {
		a.logger.Errorf("mode %s does not report accounting", mode)
		return ExitBadMode
	}

	ev, err := a.env.AccountingEvent(kind)
	if err != nil {
		a.logger.Errorf("accounting input: %v", err)
		return exitCode(err)
	}

	acct := orchestrator.NewAccountant(a.exchange, a.logger, a.opts)
	res, err := acct.Account(ctx, ev, a.servers)
	if err != nil {
		a.logger.Errorf("accounting not attempted: %v", err)
		if errors.Is(err, orchestrator.ErrConfiguration) {
			return exitCode(err)
		}
		return ExitAccountingFailed
	}

	if res.Verdict != orchestrator.Success {
		return ExitAccountingFailed
	}
	return ExitSuccess
}
