package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	nsmsgrpc "github.com/msto63/nsms/pkg/core/grpc"
	"github.com/msto63/nsms/pkg/core/health"
	"github.com/spf13/cobra"
)

var (
	healthGRPC    string
	healthHTTP    string
	healthTimeout time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a running router",
	Long: `Checks a running "nsms serve" through its gRPC health service and
its HTTP /health endpoint. Addresses default to the configured ports on
localhost.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthGRPC, "grpc", "", "gRPC address (default localhost:<grpc.port>)")
	healthCmd.Flags().StringVar(&healthHTTP, "http", "", "HTTP health URL (default http://localhost:<router.port>/health)")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "probe timeout")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	grpcAddr := healthGRPC
	if grpcAddr == "" {
		grpcAddr = fmt.Sprintf("localhost:%d", cfg.GRPC.Port)
	}
	httpURL := healthHTTP
	if httpURL == "" {
		httpURL = fmt.Sprintf("http://localhost:%d/health", cfg.Router.Port)
	}

	clientCfg := nsmsgrpc.DefaultClientConfig(grpcAddr)
	clientCfg.Timeout = healthTimeout

	registry := health.NewRegistry(cfg.General.Name, "")
	registry.Register(nsmsgrpc.HealthCheck("grpc", clientCfg, cfg.General.Name))
	registry.Register(health.HTTPCheck("http", httpURL, healthTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout+time.Second)
	defer cancel()
	report := registry.Check(ctx)

	if err := printOutput(cmd.OutOrStdout(), report, func(w *tabwriter.Writer) {
		for _, c := range report.Checks {
			icon := "[+]"
			if c.Status != health.StatusHealthy {
				icon = "[-]"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", icon, c.Name, c.Status, c.Message)
		}
	}); err != nil {
		return err
	}

	if !report.Healthy() {
		return fmt.Errorf("router is %s", report.Status)
	}
	return nil
}
