package app

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftworks/idlereap/internal/activity"
	"github.com/driftworks/idlereap/internal/cloud"
	"github.com/driftworks/idlereap/internal/config"
	"github.com/driftworks/idlereap/internal/logging"
	"github.com/driftworks/idlereap/internal/monitor"
	"github.com/driftworks/idlereap/internal/store"
	"github.com/driftworks/idlereap/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch <directory>",
		Short: "Monitor a directory and self-destruct after inactivity",
		Long: `Watch a directory tree for changes to regular files. Once no
qualifying change has been seen for the configured inactivity timeout,
resolve this droplet's ID from the metadata service and request its
destruction via the DigitalOcean API, then exit.

Directory-level events (log rotation, editor housekeeping) never count
as activity. The decision loop polls once a minute, fires at most once
per process lifetime, and never restarts itself; if the destroy call
fails the process still exits so a supervisor restart starts a fresh
timeout period rather than hammering the API.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a detached background process
  • Stop: signal a running daemon to shut down without destroying`,
		Example: `  # Destroy the droplet after 8 idle hours (default)
  idlereap watch /data/models

  # Two-hour timeout, as a daemon
  INACTIVITY_TIMEOUT=7200 idlereap watch /data/models --daemon

  # Stop the daemon
  idlereap watch /data/models --stop`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.idlereap/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.idlereap/idlereap.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}
	if watchLogFile == "" {
		watchLogFile = cfg.LogFile
	}

	if watchStop {
		return stopWatchDaemon()
	}
	if watchDaemon {
		return startWatchDaemon(cfg.WatchDir)
	}
	return runMonitor(cfg)
}

func stopWatchDaemon() error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	fmt.Println("Daemon stopped")
	return nil
}

func startWatchDaemon(watchDir string) error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon already running (PID file: %s)", watchPIDFile)
	}

	if err := watcher.StartDaemon(watchDir, watchPIDFile, watchLogFile); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Printf("Inactivity monitor started\n")
	fmt.Printf("  Watching: %s\n", watchDir)
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Printf("\nTo stop: idlereap watch %s --stop\n", watchDir)
	return nil
}

// runMonitor is the daemon body: observer plus decision loop, shared
// activity clock, signal handling, and exit-code mapping.
func runMonitor(cfg *config.Config) error {
	logOpts := logging.Options{LogFile: watchLogFile}
	if watchDaemonChild {
		// The parent already redirected stdout to the log file; a
		// second file handler would duplicate every line.
		logOpts.LogFile = ""
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer logger.Close()

	if watchDaemonChild {
		defer watcher.RemovePIDFile(watchPIDFile)
	}

	journal, err := store.New(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()
	if err := journal.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}

	clock := activity.NewClock(time.Now())

	obs, err := watcher.NewObserver(watcher.NewFSNotifySource(), clock, journal,
		logger.Logger, cfg.WatchDir, cfg.Recursive)
	if err != nil {
		return err
	}
	// Setup errors surface here, before the decision loop starts.
	if err := obs.Start(); err != nil {
		return err
	}

	resolver := cloud.NewIdentityResolver(cfg.MetadataURL)
	invoker := cloud.NewDropletClient(cfg.APIBaseURL, cfg.Token)
	action := cloud.NewSelfDestruct(resolver, invoker, journal, logger.Logger)

	mon, err := monitor.New(clock, action.Execute, cfg.Timeout(), cfg.PollInterval(), logger.Logger)
	if err != nil {
		obs.Stop()
		return err
	}

	logger.Info("inactivity monitor started",
		"path", cfg.WatchDir,
		"timeout", cfg.Timeout(),
		"poll", cfg.PollInterval())

	type runResult struct {
		outcome monitor.Outcome
		fired   bool
	}
	done := make(chan runResult, 1)
	go func() {
		outcome, fired := mon.Run()
		done <- runResult{outcome, fired}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		mon.Stop()
		<-done
		if err := obs.Stop(); err != nil {
			logger.Warn("observer shutdown error", "error", err)
		}
		logger.Info("monitor stopped without action")
		return nil

	case res := <-done:
		if err := obs.Stop(); err != nil {
			logger.Warn("observer shutdown error", "error", err)
		}
		if !res.fired {
			return nil
		}
		logger.Info("monitor finished", "outcome", res.outcome.Kind.String())

		// Missing credential is the one misconfiguration worth a
		// non-zero exit; transient action failures exit clean so a
		// supervisor restart re-runs the full timeout instead of
		// retrying the destroy in a tight loop.
		if errors.Is(res.outcome.Err, cloud.ErrMissingToken) {
			return cloud.ErrMissingToken
		}
		return nil
	}
}
