package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/regmsg/internal/command"
	"github.com/bnema/regmsg/internal/config"
	"github.com/bnema/regmsg/internal/controller"
	"github.com/bnema/regmsg/internal/display"
	"github.com/bnema/regmsg/internal/ipc"
	"github.com/bnema/regmsg/internal/logger"
	"github.com/bnema/regmsg/internal/screen"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the regmsg daemon",
	Long: `Run the long-running daemon that owns the display backend and answers
requests over the Unix socket. The backend is selected once at startup:
sway when its IPC socket exists, raw DRM otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		if cfg.Logging.LogLevel != "" {
			logger.SetLevel(cfg.Logging.LogLevel)
		}
		if cfg.Logging.FileLogging {
			f, err := logger.EnableFileLogging(cfg.Logging.LogFile)
			if err != nil {
				logger.Warnf("File logging disabled: %v", err)
			} else {
				defer f.Close()
			}
		}

		backend, err := display.Select(display.DefaultCandidates(cfg))
		if err != nil {
			return fmt.Errorf("backend selection failed: %w", err)
		}

		svc := screen.NewService(backend, cfg)
		controllers := controller.NewStore(cfg.Controller.DBPaths)
		registry := command.InitCommands(svc, controllers)

		server := ipc.NewServer(cfg.Daemon.SocketPath, registry)
		if err := server.Start(); err != nil {
			return err
		}
		defer server.Stop()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Infof("regmsg daemon ready (pid %d, backend %s)", os.Getpid(), backend.Name())
		return server.Run(ctx)
	},
}
