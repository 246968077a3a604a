// Command paygate is a terminal client for the wallet and payment-gateway API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/berniyo/paygate/internal/config"
	"github.com/berniyo/paygate/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("paygate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	dumpMetrics := fs.Bool("metrics", false, "print request metrics after the command")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(ctx, cfg, logger, stdin, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer a.Close()

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := a.commands()[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return 2
	}

	err = cmd(ctx, rest)
	if *dumpMetrics {
		if merr := writeMetrics(stdout, a.registry); merr != nil {
			logger.Warn("metrics dump failed", zap.Error(merr))
		}
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: paygate [-config file] [-metrics] <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-16s %s\n", name, commandHelp[name])
	}
	fmt.Fprintln(out)
	fs.PrintDefaults()
}

var commandHelp = map[string]string{
	"login-otp":       "sign in with a phone number and SMS code",
	"login-email-otp": "sign in with an emailed code",
	"login":           "sign in with email and password",
	"register":        "create an account with email and password",
	"logout":          "end the current session",
	"whoami":          "show the signed-in user",
	"dashboard":       "show balance and recent transactions",
	"balance":         "show the wallet balance",
	"transactions":    "list wallet transactions",
	"topup":           "add funds through the hosted checkout",
	"transfer":        "send funds to another wallet",
	"merchants":       "list or create merchants",
	"pg-order":        "submit a payment-gateway order",
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
