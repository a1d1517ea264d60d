package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"

	"github.com/atoav/bender-worker-go/internal/config"
	"github.com/atoav/bender-worker-go/internal/engine"
	"github.com/atoav/bender-worker-go/internal/hostprobe"
	"github.com/atoav/bender-worker-go/internal/obs"
	"github.com/atoav/bender-worker-go/internal/statusserver"
	"github.com/atoav/bender-worker-go/internal/transport"
)

// exchangeName is the single worker-scoped topic exchange every instance
// of this daemon publishes lifecycle events to, distinguished from each
// other only by the {worker_id} suffix of their routing keys (§6.4).
const exchangeName = "bender.worker.events"

// Version is stamped at build time via -ldflags, mirroring the reference
// org's own convention for an unversioned default.
var Version = "development"

var (
	configPath      string
	configureFlag   bool
	independentFlag bool
	localFlag       bool
	statusAddr      string
)

var rootCmd = &cobra.Command{
	Use:     "worker",
	Short:   "Render-farm worker daemon",
	Version: Version,
	RunE:    runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to the worker's YAML config file")
	rootCmd.Flags().BoolVar(&configureFlag, "configure", false, "run the interactive (re)configuration dialog and exit")
	rootCmd.Flags().BoolVarP(&independentFlag, "independent", "i", false, "force Independent mode regardless of the persisted config")
	rootCmd.Flags().BoolVar(&localFlag, "local", false, "use human-readable development logging instead of structured JSON")
	rootCmd.Flags().StringVar(&statusAddr, "status-addr", "", "bind address for the /healthz and /metrics endpoints (disabled if empty)")

	rootCmd.AddCommand(cleanCmd, getCmd)
}

func loadConfig() (*config.Config, error) {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load(config.NewPrompter())
	if err != nil {
		return nil, err
	}
	if independentFlag {
		cfg.Mode = config.Independent
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if configureFlag {
		loader := config.NewLoader(configPath)
		cfg := mustReconfigure(loader)
		fmt.Printf("configuration written to %s (id=%s)\n", configPath, cfg.ID)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := obs.NewLogger(localFlag)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if !hostprobe.RendererOnPath("blender") {
		return errors.Errorf("worker: renderer binary %q not found on PATH", "blender")
	}
	if _, err := os.Stat(cfg.OutPath); err != nil {
		return errors.Wrapf(err, "worker: output directory %s", cfg.OutPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := obs.NewMetrics(prometheus.DefaultRegisterer)

	broker, closeBroker, err := dialBroker(cfg.BrokerURL)
	if err != nil {
		return err
	}
	defer closeBroker()

	var httpTransport engine.HTTPTransport
	if cfg.Mode == config.Independent {
		httpTransport = transport.NewHTTPClient(cfg.BenderURL, &http.Client{Timeout: 60 * time.Second})
	}

	w := engine.New(engine.Config{
		WorkerID:         cfg.ID,
		BenderURL:        cfg.BenderURL,
		BlendPath:        cfg.BlendPath,
		OutPath:          cfg.OutPath,
		DiskLimit:        cfg.DiskLimit,
		Workload:         cfg.Workload,
		GracePeriod:      time.Duration(cfg.GracePeriodSecs) * time.Second,
		Mode:             modeFromConfig(cfg.Mode),
		HeartRateSeconds: cfg.HeartRateSeconds,
	}, httpTransport, logger, metrics)

	var status *statusserver.Server
	if statusAddr != "" {
		status = statusserver.New(statusAddr)
		go func() {
			if err := status.ListenAndServe(ctx); err != nil {
				logger.Errorw("status server stopped", "error", err)
			}
		}()
	}

	logger.Infow("worker starting", "worker_id", cfg.ID, "mode", cfg.Mode)
	var ticks uint64
	for {
		select {
		case <-ctx.Done():
			logger.Infow("worker shutting down")
			return nil
		default:
		}

		if err := w.Tick(ctx, broker); err != nil {
			logger.Errorw("tick failed", "error", err)
		}
		ticks++
		if status != nil {
			status.UpdateSnapshot(statusserver.Snapshot{
				WorkerID:    cfg.ID,
				TicksRun:    ticks,
				LastTickAt:  time.Now(),
				HasTickedOK: true,
			})
		}
	}
}

func modeFromConfig(m config.Mode) engine.Mode {
	if m == config.Server {
		return engine.Server
	}
	return engine.Independent
}

func dialBroker(url string) (transport.Broker, func(), error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "worker: dialing broker at %s", url)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, errors.Wrap(err, "worker: opening broker channel")
	}
	broker, err := transport.NewAMQPBroker(ch, "work", exchangeName)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	closeFn := func() {
		ch.Close()
		conn.Close()
	}
	return broker, closeFn, nil
}

func mustReconfigure(loader *config.Loader) *config.Config {
	cfg, err := loader.Reconfigure(config.NewPrompter())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
