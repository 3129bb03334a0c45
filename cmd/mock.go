package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-verify/internal/mockapi"
)

var mockPort int

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start the mock Numverify, NeverBounce and MicroBilt server",
	Long: `Serves deterministic provider responses for local runs. Point the verifier
at it with providers.use_mock=true and providers.mock_url.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := cfg.Mock.Port
		if mockPort != 0 {
			port = mockPort
		}
		return mockapi.Run(ctx, port)
	},
}

func init() {
	mockCmd.Flags().IntVar(&mockPort, "port", 0, "HTTP port (overrides config mock.port)")
	rootCmd.AddCommand(mockCmd)
}
