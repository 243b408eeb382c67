package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lakefhir/healthlake-mcp-server/config"
	"github.com/lakefhir/healthlake-mcp-server/fhirclient"
	"github.com/lakefhir/healthlake-mcp-server/healthlake"
	"github.com/lakefhir/healthlake-mcp-server/tools"
)

const (
	serverName    = "healthlake-mcp-server"
	serverVersion = "1.0.0"
)

func main() {
	root := &cobra.Command{
		Use:          serverName,
		Short:        "MCP server exposing AWS HealthLake datastores and FHIR resources as tools",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), toolsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			mgmt, err := healthlake.New(cmd.Context(), cfg.AWSRegion)
			if err != nil {
				logger.Error("failed to initialize AWS client", zap.Error(err))
				return err
			}
			fhir := fhirclient.New(mgmt, mgmt.Credentials(), mgmt.Region(), cfg.FHIRTimeout, logger.Named("fhir"))

			registry := tools.NewRegistry(mgmt, fhir, cfg.ReadOnly, logger.Named("tools"))

			s := server.NewMCPServer(
				serverName,
				serverVersion,
				server.WithToolCapabilities(true),
				server.WithRecovery(),
			)
			registry.Register(s)

			logger.Info("serving MCP over stdio",
				zap.String("region", cfg.AWSRegion),
				zap.Bool("read_only", cfg.ReadOnly),
			)
			return server.ServeStdio(s)
		},
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions as JSON and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := tools.NewRegistry(nil, nil, false, zap.NewNop())

			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")
			return out.Encode(registry.Definitions())
		},
	}
}

// newLogger builds a production zap logger writing to stderr. Stdout belongs
// to the MCP stdio transport and must stay clean.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}
