package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripcal/internal/calendar"
	"tripcal/internal/capture"
	"tripcal/internal/config"
	appLog "tripcal/internal/log"
	"tripcal/internal/metrics"
	"tripcal/internal/refresh"
	"tripcal/internal/source"
	"tripcal/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	debug      bool
	once       bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("tripcal starting", "version", version)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.debug {
		conf.LogLevel = "debug"
		conf.CacheDir = "./cache/ics-cache"
		conf.PreviewPath = "./cache/preview.png"
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"source", conf.Source.Kind,
		"ics_count", len(conf.Source.ICS),
		"once", flags.once,
		"debug", flags.debug,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, flags.once); err != nil {
		appLog.Error("tripcal failed", err)
		os.Exit(1)
	}
	appLog.Info("tripcal exiting")
}

func run(ctx context.Context, conf *config.Config, once bool) error {
	loc := conf.Location()

	src, err := source.NewFromConfig(conf.Source, source.Env{
		Location: loc,
		CacheDir: conf.CacheDir,
	})
	if err != nil {
		return err
	}

	view := calendar.NewView(calendar.Options{
		Location:  loc,
		WeekStart: conf.FirstWeekday(),
	})
	defer view.Close()

	m := metrics.New()
	reloader := refresh.New(view, src, m, loc)
	server := web.NewServer(conf, view, reloader, m)

	if once {
		return runOnce(ctx, conf, server, reloader)
	}

	// The page reports loading until this finishes.
	go func() {
		if err := reloader.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLog.Error("initial load failed", err)
		}
	}()

	if err := reloader.Start(conf.RefreshCron); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		reloader.Stop(stopCtx)
	}()

	return server.ListenAndServe(ctx)
}

// runOnce loads events, serves the page just long enough to capture it to
// conf.PreviewPath, and returns.
func runOnce(ctx context.Context, conf *config.Config, server *web.Server, reloader *refresh.Reloader) error {
	if err := reloader.Reload(ctx); err != nil {
		// The failed state still renders; capture it.
		appLog.Error("load failed; capturing empty calendar", err)
	}

	srvCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	srvErr := make(chan error, 1)
	go func() { srvErr <- server.ListenAndServe(srvCtx) }()

	if err := waitForListener(ctx, conf.Listen, 5*time.Second); err != nil {
		return err
	}

	captureErr := capture.CalendarPNG(ctx, capture.Options{
		URL:        calendarURL(conf),
		OutputPath: conf.PreviewPath,
	})

	cancel()
	if err := <-srvErr; err != nil {
		return errors.Join(captureErr, err)
	}
	return captureErr
}

// calendarURL builds the local /calendar URL, carrying basic auth
// credentials when enabled.
func calendarURL(conf *config.Config) string {
	host, port, err := net.SplitHostPort(conf.Listen)
	if err != nil {
		host, port = "127.0.0.1", "8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: "/calendar"}
	if ba := conf.BasicAuth; ba != nil && ba.Username != "" && ba.Password != "" {
		u.User = url.UserPassword(ba.Username, ba.Password)
	}
	return u.String()
}

func waitForListener(ctx context.Context, addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var d net.Dialer
	for {
		dialCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		conn, err := d.DialContext(dialCtx, "tcp", addr)
		cancel()
		if err == nil {
			_ = conn.Close()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/tripcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and local cache/preview paths under ./cache")
	flag.BoolVar(&cfg.once, "once", false, "Load events, capture /calendar to the preview PNG and exit")

	flag.Parse()

	return cfg
}
