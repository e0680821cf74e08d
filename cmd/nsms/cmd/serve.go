package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/nsms/internal/router/server"
	nsmsgrpc "github.com/msto63/nsms/pkg/core/grpc"
	"github.com/msto63/nsms/pkg/core/health"
	"github.com/msto63/nsms/pkg/core/logging"
	"github.com/msto63/nsms/pkg/core/version"
	"github.com/spf13/cobra"
)

var (
	serveNoGRPC     bool
	serveHealthTick time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the router",
	Long: `Starts the HTTP router and the gRPC health endpoint.

HTTP (default :8080):
  /router/receive             carrier callback (backend, sender, message)
  /api/v1/messages[.csv]      message log
  /api/v1/messages/monthly    monthly volume
  /api/v1/status              unsent and failed messages
  /health                     health report
  /ws/tester                  websocket tester

gRPC (default :9090): grpc.health.v1.Health for service "nsms".`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoGRPC, "no-grpc", false, "do not start the gRPC health endpoint")
	serveCmd.Flags().DurationVar(&serveHealthTick, "health-interval", 15*time.Second, "how often health is published over gRPC")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx, "serve")
	if err != nil {
		return err
	}
	defer a.Close()

	info := version.Get()
	logger := logging.Wrap(a.logger)

	registry := health.NewRegistry(a.cfg.General.Name, info.Version)
	registry.Register(health.DatabaseCheck("database", a.db))

	httpCfg := server.ConfigFrom(a.cfg, info.Version)
	httpSrv := server.New(httpCfg, a.router, a.tester, a.catalog, registry, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Start()
	}()
	fmt.Printf("  [+] router HTTP on %s\n", httpSrv.Address())

	var grpcSrv *nsmsgrpc.Server
	if !serveNoGRPC {
		grpcSrv = nsmsgrpc.NewServer(nsmsgrpc.ServerConfigFrom(a.cfg, logger))
		if err := grpcSrv.StartAsync(); err != nil {
			httpSrv.Stop(context.Background())
			return err
		}
		go grpcSrv.WatchHealth(ctx, registry, serveHealthTick)
		fmt.Printf("  [+] gRPC health on %s\n", grpcSrv.Address())
	}

	select {
	case <-sigCh:
		fmt.Println("\nstopping...")
	case err := <-errCh:
		if err != nil {
			printError("server", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if grpcSrv != nil {
		grpcSrv.StopWithTimeout(shutdownCtx)
	}
	return httpSrv.Stop(shutdownCtx)
}
