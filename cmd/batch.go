package main

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/integration"
	"github.com/sells-group/lead-verify/internal/model"
	"github.com/sells-group/lead-verify/pkg/notion"
)

var batchLimit int

// batchSummary counts the outcome of one Notion batch.
type batchSummary struct {
	Queued   int
	Verified int
	Flagged  int
	Rejected int
	Failed   int // write-back failures
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Verify queued leads from the Notion lead database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Notion.Token == "" {
			return eris.New("notion token is required (LEADVERIFY_NOTION_TOKEN)")
		}
		if cfg.Notion.LeadDB == "" {
			return eris.New("notion lead DB ID is required (LEADVERIFY_NOTION_LEAD_DB)")
		}

		env := initEnv(cfg)
		sum, err := processQueued(cmd.Context(), env.Manager, notion.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB, batchLimit, cfg.Batch.MaxConcurrentLeads)
		if err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int("queued", sum.Queued),
			zap.Int("verified", sum.Verified),
			zap.Int("flagged", sum.Flagged),
			zap.Int("rejected", sum.Rejected),
			zap.Int("write_failed", sum.Failed),
		)
		return nil
	},
}

// processQueued verifies queued Notion leads and writes each result back to
// its page. A failed write-back is logged and counted, not fatal.
func processQueued(ctx context.Context, mgr *integration.Manager, nc notion.Client, dbID string, limit, concurrency int) (*batchSummary, error) {
	pages, err := notion.QueryQueuedLeads(ctx, nc, dbID)
	if err != nil {
		return nil, eris.Wrap(err, "query queued leads")
	}
	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}

	sum := &batchSummary{Queued: len(pages)}
	if len(pages) == 0 {
		zap.L().Info("no queued leads found")
		return sum, nil
	}

	recs := make([]adapter.Record, len(pages))
	for i, p := range pages {
		recs[i] = notion.PageRecord(p)
	}

	result, err := mgr.ProcessBatch(ctx, adapter.SourceNotion, recs)
	if err != nil {
		return nil, eris.Wrap(err, "verify queued leads")
	}
	sum.Rejected = len(result.Rejected)
	for _, r := range result.Rejected {
		zap.L().Warn("lead rejected",
			zap.String("page_id", r.Record.String(adapter.NotionPageID)),
			zap.String("reason", r.Reason),
		)
	}

	if concurrency < 1 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var failed atomic.Int64
	for _, l := range result.Leads {
		if l.Status() == model.StatusVerified {
			sum.Verified++
		} else {
			sum.Flagged++
		}
		g.Go(func() error {
			if err := notion.WriteVerification(gctx, nc, l.ID, l); err != nil {
				failed.Add(1)
				zap.L().Error("write verification failed", zap.String("page_id", l.ID), zap.Error(err))
			}
			return nil // don't abort batch on individual failure
		})
	}
	_ = g.Wait()
	sum.Failed = int(failed.Load())

	return sum, nil
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of leads to process")
	rootCmd.AddCommand(batchCmd)
}
