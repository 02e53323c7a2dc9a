package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/meetingmind/app"
	"github.com/kbukum/meetingmind/bootstrap"
	"github.com/kbukum/meetingmind/observability"
	"github.com/kbukum/meetingmind/server"
)

var servePort int

// serveCmd runs the HTTP analysis service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis service",
	Long: `Run the HTTP host with POST /api/ai/analyze, POST /api/ai/summarize,
/health, /info and /metrics until SIGINT or SIGTERM.

Examples:
  meetingmind serve
  meetingmind serve --port 8080
  MEETINGMIND_ANALYSIS_CACHE_ENABLED=true meetingmind serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	// In-flight analyses may run up to the write timeout.
	grace := time.Duration(cfg.Server.WriteTimeout) * time.Second
	application, err := bootstrap.NewApp(cfg,
		bootstrap.WithSummaryOutput(cmd.OutOrStdout()),
		bootstrap.WithGracefulTimeout(grace),
	)
	if err != nil {
		return err
	}

	stack, err := app.Build(cfg, keyStore, application.Logger)
	if err != nil {
		return err
	}
	if err := stack.Register(application); err != nil {
		return err
	}
	srv := stack.NewServer(application.Components.HealthAll)
	if err := application.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	shutdown, err := observability.Setup(cmd.Context(), cfg.Observability)
	if err != nil {
		return err
	}
	application.OnStop(shutdown)

	return application.Run(cmd.Context())
}
