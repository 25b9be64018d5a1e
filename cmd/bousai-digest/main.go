package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rajasatyajit/bousai/config"
	"github.com/rajasatyajit/bousai/internal/alertfeed"
	"github.com/rajasatyajit/bousai/internal/digest"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/messaging"
	"github.com/rajasatyajit/bousai/internal/weather"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type options struct {
	cronSpec string
	dryRun   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "bousai-digest: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("bousai-digest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cronSpec, "cron", "", "stay resident and publish on this cron schedule (e.g. \"0 7 * * *\")")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "print the digest to stdout instead of posting it")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// run publishes once, or on a schedule when -cron is given
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !opts.dryRun {
		if err := cfg.ValidateDigest(); err != nil {
			return fmt.Errorf("invalid digest config: %w", err)
		}
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting bousai digest",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
		"platform", cfg.Digest.Platform,
		"dry_run", opts.dryRun,
	)

	var sender messaging.ChannelSender = messaging.WriterSender{W: stdout}
	if !opts.dryRun {
		sender, err = messaging.NewChannelSender(cfg.Digest, cfg.HTTP.Timeout)
		if err != nil {
			return err
		}
	}

	publisher, err := digest.NewPublisher(
		cfg.Digest,
		weather.NewClient(cfg.Weather, cfg.HTTP.Timeout),
		alertfeed.NewFetcher(cfg.Alerts, cfg.HTTP.Timeout),
		sender,
	)
	if err != nil {
		return err
	}

	if opts.cronSpec == "" {
		return publisher.Run(ctx)
	}
	return schedule(ctx, cfg.Digest.Timezone, opts.cronSpec, publisher)
}

// schedule runs the publisher on spec until ctx is cancelled
func schedule(ctx context.Context, timezone, spec string, publisher *digest.Publisher) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	id, err := c.AddFunc(spec, func() {
		// Failures are logged by the publisher; the schedule keeps going.
		_ = publisher.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	c.Start()
	logger.Info("Digest scheduled", "cron", spec, "timezone", timezone, "next", c.Entry(id).Next)

	<-ctx.Done()

	logger.Info("Stopping scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler exited")
	return nil
}
