package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/model"
)

// PageRecord flattens a lead page into an adapter.Record keyed by property
// name. Unsupported property types are left out.
func PageRecord(page notionapi.Page) adapter.Record {
	rec := adapter.Record{adapter.NotionPageID: string(page.ID)}
	for name, prop := range page.Properties {
		if v, ok := propertyText(prop); ok {
			rec[name] = strings.TrimSpace(v)
		}
	}
	return rec
}

func propertyText(prop notionapi.Property) (string, bool) {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return plainText(p.Title), true
	case *notionapi.RichTextProperty:
		return plainText(p.RichText), true
	case *notionapi.EmailProperty:
		return p.Email, true
	case *notionapi.PhoneNumberProperty:
		return p.PhoneNumber, true
	case *notionapi.URLProperty:
		return p.URL, true
	case *notionapi.StatusProperty:
		return p.Status.Name, true
	default:
		return "", false
	}
}

func plainText(rts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}}
}

// verificationProperties builds the write-back properties for a verified lead.
func verificationProperties(l *model.Lead) notionapi.Properties {
	status := adapter.NotionStatusVerified
	if l.Status() == model.StatusFlagged {
		status = adapter.NotionStatusFlagged
	}

	props := notionapi.Properties{
		adapter.NotionStatus: notionapi.StatusProperty{
			Status: notionapi.Status{Name: status},
		},
		adapter.NotionRiskFactors: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(strings.Join(l.RiskFactors, ", ")),
		},
	}
	if l.RiskScore != nil {
		props[adapter.NotionRiskScore] = notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: *l.RiskScore,
		}
	}
	return props
}

// WriteVerification sets Status and Risk Factors (and Risk Score, when
// scored) on the lead's page.
func WriteVerification(ctx context.Context, c Client, pageID string, l *model.Lead) error {
	if !l.IsVerified() {
		return eris.Errorf("notion: lead %s has no verification result", pageID)
	}
	_, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{
		Properties: verificationProperties(l),
	})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("notion: write verification %s", pageID))
	}
	return nil
}

// leadProperties builds the properties of a new Queued lead page.
func leadProperties(l *model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		adapter.NotionName: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(l.FullName()),
		},
		adapter.NotionStatus: notionapi.StatusProperty{
			Status: notionapi.Status{Name: StatusQueued},
		},
	}
	if l.Email != "" {
		props[adapter.NotionEmail] = notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: l.Email,
		}
	}
	if l.Phone != "" {
		props[adapter.NotionPhone] = notionapi.PhoneNumberProperty{
			Type:        notionapi.PropertyTypePhoneNumber,
			PhoneNumber: l.Phone,
		}
	}
	return props
}

// ImportLeads creates one Queued page per lead and returns how many were
// created. Leads already seen by email (case-insensitive) are skipped. It
// stops at the first failed create.
func ImportLeads(ctx context.Context, c Client, dbID string, leads []*model.Lead) (int, error) {
	seen := make(map[string]bool, len(leads))
	created := 0
	for _, l := range leads {
		if err := ctx.Err(); err != nil {
			return created, eris.Wrap(err, "notion: import leads")
		}

		key := strings.ToLower(strings.TrimSpace(l.Email))
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		_, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: leadProperties(l),
		})
		if err != nil {
			return created, eris.Wrap(err, fmt.Sprintf("notion: import lead %q", l.FullName()))
		}
		created++
	}
	return created, nil
}
