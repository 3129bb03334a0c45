package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-verify/internal/history"
	"github.com/sells-group/lead-verify/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification dashboard API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		env := initEnv(cfg)
		srv := server.New(env.Manager, history.NewStore(), env.Registry, env.Registry)
		return srv.Run(ctx, port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides config server.port)")
	rootCmd.AddCommand(serveCmd)
}
