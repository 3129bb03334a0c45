package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/config"
	"github.com/sells-group/lead-verify/internal/integration"
	"github.com/sells-group/lead-verify/internal/model"
	"github.com/sells-group/lead-verify/internal/tabular"
)

const (
	verifiedFile = "verified_leads.json"
	flaggedFile  = "flagged_leads.json"
	rejectedFile = "rejected_leads.json"
	exportFile   = "leads_export.csv"
)

var (
	runOutput       string
	runNoDateFolder bool
	runLimit        int
	runPolicy       string
	runConcurrency  int
)

// runOptions controls a file run.
type runOptions struct {
	OutputDir   string
	DateFolder  bool
	Limit       int
	Policy      integration.BatchPolicy // empty keeps the configured policy
	Concurrency int                     // zero keeps the configured value
	Now         func() time.Time
}

// runSummary reports where a file run wrote its results.
type runSummary struct {
	RunID     string
	OutputDir string
	Verified  int
	Flagged   int
	Rejected  int
}

var runCmd = &cobra.Command{
	Use:   "run <file.csv|file.xlsx>",
	Short: "Verify every lead in a CSV or XLSX file",
	Long: `Loads a lead file, detects its name/phone/email columns, verifies every
lead and writes verified_leads.json, flagged_leads.json and leads_export.csv.

By default results go to a leads_YYYY-MM-DD folder under --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := runFile(cmd.Context(), cfg, args[0], runOptions{
			OutputDir:   runOutput,
			DateFolder:  !runNoDateFolder,
			Limit:       runLimit,
			Policy:      integration.BatchPolicy(runPolicy),
			Concurrency: runConcurrency,
		})
		if err != nil {
			return err
		}

		zap.L().Info("run complete",
			zap.String("run_id", sum.RunID),
			zap.String("output", sum.OutputDir),
			zap.Int("verified", sum.Verified),
			zap.Int("flagged", sum.Flagged),
			zap.Int("rejected", sum.Rejected),
		)
		return nil
	},
}

func runFile(ctx context.Context, c *config.Config, path string, opts runOptions) (*runSummary, error) {
	if opts.Policy != "" && opts.Policy != integration.BatchAbort && opts.Policy != integration.BatchSkip {
		return nil, eris.Errorf("run: invalid policy %q (want abort or skip)", opts.Policy)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("file", path))

	table, err := tabular.LoadFile(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "run: load file")
	}
	recs := table.Records
	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}

	var envOpts []integration.Option
	if opts.Policy != "" {
		envOpts = append(envOpts, integration.WithBatchPolicy(opts.Policy))
	}
	if opts.Concurrency > 0 {
		envOpts = append(envOpts, integration.WithWorkers(opts.Concurrency))
	}
	env := initEnv(c, envOpts...)

	csvAdapter := adapter.NewCSVAdapter(table.Headers)
	env.Manager.RegisterAdapter(csvAdapter)
	cols := csvAdapter.Columns()
	log.Info("run: columns detected",
		zap.Int("records", len(recs)),
		zap.String("name", firstNonEmpty(cols.FullName, cols.FirstName+"+"+cols.LastName)),
		zap.String("phone", cols.Phone),
		zap.String("email", cols.Email),
	)

	result, err := env.Manager.ProcessBatch(ctx, adapter.SourceCSV, recs)
	if err != nil {
		return nil, eris.Wrap(err, "run: process batch")
	}

	var verified, flagged []*model.Lead
	for _, l := range result.Leads {
		if l.Status() == model.StatusVerified {
			verified = append(verified, l)
		} else {
			flagged = append(flagged, l)
		}
	}

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if opts.DateFolder {
		outDir = filepath.Join(outDir, "leads_"+opts.Now().Format("2006-01-02"))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "run: create output dir")
	}

	if err := writeJSONFile(filepath.Join(outDir, verifiedFile), nonNil(verified)); err != nil {
		return nil, err
	}
	if err := writeJSONFile(filepath.Join(outDir, flaggedFile), nonNil(flagged)); err != nil {
		return nil, err
	}
	if len(result.Rejected) > 0 {
		if err := writeJSONFile(filepath.Join(outDir, rejectedFile), result.Rejected); err != nil {
			return nil, err
		}
		log.Warn("run: records rejected", zap.Int("count", len(result.Rejected)))
	}

	exported, err := env.Manager.ExportBatch(adapter.SourceCSV, result.Leads)
	if err != nil {
		return nil, eris.Wrap(err, "run: export leads")
	}
	f, err := os.Create(filepath.Join(outDir, exportFile))
	if err != nil {
		return nil, eris.Wrap(err, "run: create export")
	}
	defer f.Close() //nolint:errcheck
	if err := tabular.WriteCSV(f, adapter.ExportColumns, exported); err != nil {
		return nil, eris.Wrap(err, "run: write export")
	}

	return &runSummary{
		RunID:     runID,
		OutputDir: outDir,
		Verified:  len(verified),
		Flagged:   len(flagged),
		Rejected:  len(result.Rejected),
	}, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "run: marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "run: write %s", filepath.Base(path))
	}
	return nil
}

func nonNil(leads []*model.Lead) []*model.Lead {
	if leads == nil {
		return []*model.Lead{}
	}
	return leads
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	runCmd.Flags().StringVar(&runOutput, "output", ".", "directory for result files")
	runCmd.Flags().BoolVar(&runNoDateFolder, "no-date-folder", false, "write directly into --output instead of a leads_YYYY-MM-DD folder")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max number of leads to verify (0 = all)")
	runCmd.Flags().StringVar(&runPolicy, "policy", "", "invalid-record policy: abort or skip (default from config)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "leads verified at once (default from config)")
	rootCmd.AddCommand(runCmd)
}
