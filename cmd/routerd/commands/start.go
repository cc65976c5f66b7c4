package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/routerd/routerd/internal/config"
	"github.com/routerd/routerd/internal/evloop"
	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/mds"
	"github.com/routerd/routerd/internal/netlinkdrv"
	"github.com/routerd/routerd/internal/nexus"
	"github.com/routerd/routerd/internal/nexus/httpaux"
	"github.com/routerd/routerd/internal/rib"
	"github.com/routerd/routerd/pkg/adapter"
)

var configFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the router daemon in the foreground",
	Long: `Start routerd in the foreground: load configuration, bring up the nexus
supervisor and its protocol workers, open the config/exec UNIX domain
sockets, and run until interrupted.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to routerd.yaml (default: $XDG_CONFIG_HOME/routerd/routerd.yaml)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	poller, err := evloop.NewEpollPoller(128)
	if err != nil {
		return fmt.Errorf("failed to create event poller: %w", err)
	}
	loop := evloop.New(poller)
	n := nexus.New(loop)

	driver, err := netlinkdrv.Open(netlinkdrv.Callbacks{})
	if err != nil {
		return fmt.Errorf("failed to open netlink driver: %w", err)
	}
	if err := driver.AttachEvents(loop); err != nil {
		return fmt.Errorf("failed to attach netlink event socket: %w", err)
	}
	defer driver.Close()

	ribTable := rib.New(driver)

	if err := wireAdapters(n, ribTable); err != nil {
		return err
	}

	if err := n.Boot(nexus.Config{
		ConfigSocketPath: cfg.Nexus.ConfigSocket,
		ExecSocketPath:   cfg.Nexus.ExecSocket,
	}); err != nil {
		return fmt.Errorf("failed to open nexus listeners: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var httpSrv *httpaux.Server
	if cfg.HTTP.Enabled {
		reg := prometheus.NewRegistry()
		httpSrv = httpaux.NewServer(httpaux.Config{Addr: cfg.HTTP.Addr}, reg, n.Tree())

		if cfg.Metrics.Enabled {
			metrics := httpaux.NewMetrics(reg)
			go watchTimerQueueDepth(ctx, loop, metrics)
		}

		go func() {
			if err := httpSrv.Start(ctx); err != nil {
				logger.Error("httpaux server exited", logger.Err(err))
			}
		}()
	}

	nexusDone := make(chan error, 1)
	go func() {
		nexusDone <- n.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("routerd running", "config_socket", cfg.Nexus.ConfigSocket, "exec_socket", cfg.Nexus.ExecSocket)

	select {
	case <-sigCh:
		signal.Stop(sigCh)
		logger.Info("shutdown signal received")
	case err := <-nexusDone:
		if err != nil {
			logger.Error("nexus event loop exited with error", logger.Err(err))
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	n.Shutdown()
	cancel()
	if httpSrv != nil {
		_ = httpSrv.Stop(shutdownCtx)
	}

	select {
	case <-nexusDone:
	case <-shutdownCtx.Done():
		logger.Warn("nexus did not stop within shutdown timeout")
	}

	logger.Info("routerd stopped")
	return nil
}

// wireAdapters builds every protocol adapter and registers its worker, its
// config route-table segments, and its exec MDS proxy paths.
func wireAdapters(n *nexus.Nexus, ribTable *rib.Table) error {
	deps := adapter.Deps{RIB4: ribTable}
	factories := []adapter.Factory{
		adapter.NewZebraFactory(),
		adapter.NewOspfFactory(),
	}

	for _, factory := range factories {
		a, err := factory(deps)
		if err != nil {
			return fmt.Errorf("failed to build adapter: %w", err)
		}

		n.RegisterWorker(a.Worker())

		for _, seg := range a.Segments() {
			n.RouteTable()[seg] = nexus.RouteEntry{Kind: nexus.RouteProto, Worker: a.Name()}
		}
		for _, path := range a.ExecPaths() {
			n.Tree().Register(path, &mds.Handler{Category: mds.Proxy, Worker: a.Name()})
		}

		logger.Info("adapter registered", "name", a.Name(), "segments", a.Segments())
	}

	return nil
}

func watchTimerQueueDepth(ctx context.Context, loop *evloop.Loop, metrics *httpaux.Metrics) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetTimerQueueDepth(loop.PendingTimers())
		}
	}
}
