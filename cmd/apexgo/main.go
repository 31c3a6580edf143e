package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"apexgo/internal/api"
	"apexgo/pkg/canbus"
	"apexgo/pkg/config"
	"apexgo/pkg/core"
	"apexgo/pkg/dashboard"
	"apexgo/pkg/haptics"
	"apexgo/pkg/logging"
	"apexgo/pkg/sim/demo"
	"apexgo/pkg/tracker"
	"apexgo/pkg/version"
)

// options are the command-line overrides applied on top of the config file.
type options struct {
	ConfigPath string
	InitConfig bool
	Demo       string
	Listen     bool
	UDPAddr    string
	Trace      bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("apexgo", pflag.ContinueOnError)
	fs.StringVarP(&o.ConfigPath, "config", "c", config.DefaultPath, "path to the YAML config file")
	fs.BoolVar(&o.InitConfig, "init-config", false, "generate the default config file and exit")
	fs.StringVar(&o.Demo, "demo", "", "start the named demo scenario on launch")
	fs.BoolVar(&o.Listen, "listen", false, "start live UDP ingestion on launch")
	fs.StringVar(&o.UDPAddr, "udp-addr", "", "override listener.address")
	fs.BoolVar(&o.Trace, "trace", false, "log every datagram at debug level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.Demo != "" && o.Listen {
		return o, errors.New("--demo and --listen are mutually exclusive")
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if opts.InitConfig {
		if err := config.GenerateDefault(opts.ConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", opts.ConfigPath)
		return
	}

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.UDPAddr != "" {
		appCfg.Listener.Address = opts.UDPAddr
	}
	logging.EnableTrace = opts.Trace || appCfg.Listener.Trace

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("ApexGo Started", "version", version.Version)

	store := dashboard.NewStore()
	tr := tracker.New()

	disp := haptics.NewDispatcher(appCfg.Haptics.QueueSize)
	disp.Register(haptics.LogSink{Logger: slog.Default().With("component", "haptics")})
	stream := api.NewStream(store, slog.Default())
	var em haptics.Emitter = haptics.Discard
	if appCfg.Haptics.Enabled {
		disp.Register(stream)
		disp.Start()
		defer disp.Close()
		em = disp
	}
	go stream.Run(ctx)

	ctrl := core.New(controllerConfig(appCfg), store, em, tr, slog.Default())
	defer ctrl.Stop()

	if appCfg.CAN.Enabled {
		closeCAN, err := startCAN(ctx, appCfg.CAN, store)
		if err != nil {
			slog.Error("CAN forwarding disabled", "interface", appCfg.CAN.Interface, "error", err)
		} else {
			defer closeCAN()
		}
	}

	switch {
	case opts.Demo != "":
		if err := ctrl.StartScenario(opts.Demo); err != nil {
			return err
		}
	case opts.Listen:
		// A bind failure is visible through /api/status; keep serving.
		_ = ctrl.Start()
	}

	return runServer(ctx, appCfg, api.Handlers{
		Snapshot: api.NewSnapshotHandler(store),
		Control:  api.NewControlHandler(ctrl),
		Stats:    api.NewStatsHandler(tr, disp),
		Stream:   stream,
	})
}

func controllerConfig(cfg *config.Config) core.Config {
	return core.Config{
		ListenAddr:   cfg.Listener.Address,
		MaxDatagram:  cfg.Listener.MaxDatagram,
		VehicleIndex: cfg.Listener.VehicleIndex,
		Demo: demo.Config{
			Tick:             cfg.Demo.Tick.Std(),
			Noise:            cfg.Demo.Noise,
			FlashProbability: cfg.Demo.FlashProbability,
			Seed:             cfg.Demo.Seed,
			DriverName:       cfg.Demo.DriverName,
			TeamID:           cfg.Demo.TeamID,
		},
	}
}

func startCAN(ctx context.Context, cfg config.CANConfig, store *dashboard.Store) (func(), error) {
	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	tx, closer, err := canbus.Dial(dialCtx, cfg.Interface)
	if err != nil {
		return nil, err
	}
	fwd := canbus.NewForwarder(store, tx, cfg.Interval.Std(), slog.Default())
	go fwd.Run(ctx)
	slog.Info("CAN forwarding started", "interface", cfg.Interface, "interval", cfg.Interval)
	return func() {
		if err := closer.Close(); err != nil {
			slog.Warn("Failed to close CAN connection", "error", err)
		}
	}, nil
}

func runServer(ctx context.Context, cfg *config.Config, h api.Handlers) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address, h, shutdownFunc)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
