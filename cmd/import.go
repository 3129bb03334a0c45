package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/model"
	"github.com/sells-group/lead-verify/internal/tabular"
	"github.com/sells-group/lead-verify/pkg/notion"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Queue leads from a CSV or XLSX file in the Notion lead database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" {
			return eris.New("notion token is required (LEADVERIFY_NOTION_TOKEN)")
		}
		if cfg.Notion.LeadDB == "" {
			return eris.New("notion lead DB ID is required (LEADVERIFY_NOTION_LEAD_DB)")
		}

		created, err := importFile(cmd.Context(), notion.NewClient(cfg.Notion.Token), cfg.Notion.LeadDB, args[0])
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("created", created),
			zap.String("file", args[0]),
		)
		return nil
	},
}

// importFile creates a Queued Notion page for every row of path that has a
// name and at least one of phone or email.
func importFile(ctx context.Context, nc notion.Client, dbID, path string) (int, error) {
	table, err := tabular.LoadFile(ctx, path)
	if err != nil {
		return 0, eris.Wrap(err, "import: load file")
	}

	a := adapter.NewCSVAdapter(table.Headers)
	var leads []*model.Lead
	for i, rec := range table.Records {
		l := a.ToLead(rec)
		if !a.Validate(rec) || l.FullName() == "" || (l.Phone == "" && l.Email == "") {
			zap.L().Warn("import: skipping incomplete row", zap.Int("row", i+1))
			continue
		}
		leads = append(leads, l)
	}

	created, err := notion.ImportLeads(ctx, nc, dbID, leads)
	if err != nil {
		return created, eris.Wrap(err, "import leads")
	}
	return created, nil
}
