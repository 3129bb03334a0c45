package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/config"
)

var (
	verifyFirst string
	verifyLast  string
	verifyPhone string
	verifyEmail string
	verifyScore bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a single lead and print the result as JSON",
	Example: `  lead-verify verify --first John --last Doe --phone 123-456-7890 --email john@example.com
  LEADVERIFY_PROVIDERS_USE_MOCK=true lead-verify verify --first Bob --last Johnson --phone 5551234567 --email bob@example.com --score`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := *cfg
		if verifyScore {
			c.Scoring.Enabled = true
		}
		rec := adapter.Record{
			"first_name": verifyFirst,
			"last_name":  verifyLast,
			"phone":      verifyPhone,
			"email":      verifyEmail,
		}
		return verifyOne(cmd.Context(), &c, rec, cmd.OutOrStdout())
	},
}

func verifyOne(ctx context.Context, c *config.Config, rec adapter.Record, w io.Writer) error {
	env := initEnv(c)
	l, err := env.Manager.ProcessLead(ctx, adapter.SourceAPI, rec)
	if err != nil {
		return eris.Wrap(err, "verify lead")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFirst, "first", "", "first name (required)")
	verifyCmd.Flags().StringVar(&verifyLast, "last", "", "last name (required)")
	verifyCmd.Flags().StringVar(&verifyPhone, "phone", "", "phone number (required)")
	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "email address (required)")
	verifyCmd.Flags().BoolVar(&verifyScore, "score", false, "attach a numeric risk score")
	for _, f := range []string{"first", "last", "phone", "email"} {
		_ = verifyCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(verifyCmd)
}
