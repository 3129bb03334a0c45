package adapter

import (
	"strings"

	"github.com/sells-group/lead-verify/internal/model"
)

// SourceCSV is the source tag of CSVAdapter.
const SourceCSV = "csv"

// ExportColumns is the column order of records produced by CSVAdapter.FromLead.
var ExportColumns = []string{
	"id", "first_name", "last_name", "email", "phone",
	"overall_status", "risk_factors", "risk_score",
}

// ColumnMap binds logical lead fields to source headers. An empty value
// means the field is not present in the source.
type ColumnMap struct {
	ID        string
	FirstName string
	LastName  string
	FullName  string // used only when FirstName and LastName are unbound
	Email     string
	Phone     string
}

// CanonicalColumns is the mapping for records that already use the
// canonical field names.
var CanonicalColumns = ColumnMap{
	ID:        "id",
	FirstName: "first_name",
	LastName:  "last_name",
	Email:     "email",
	Phone:     "phone",
}

var exactHeaders = map[string]string{
	"id":    "id",
	"first": "first_name",
	"last":  "last_name",
	"name":  "name",
	"email": "email",
	"phone": "phone",
}

// DetectColumns maps headers to logical fields.
//
// Exact canonical names win. Otherwise the first header (in header order)
// containing the field's keyword is used: "phone", "mail", "first",
// "last"/"surname", then "name" for a full-name column. When nothing matches,
// the full name falls back to column 0, phone to column 1 and email to
// column 2. A header is bound to at most one field. First and last name are
// kept only when both are found; otherwise a single full-name column is used.
func DetectColumns(headers []string) ColumnMap {
	if len(headers) == 0 {
		return CanonicalColumns
	}

	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}

	used := make(map[int]bool)
	bind := func(i int) string {
		used[i] = true
		return headers[i]
	}
	exact := func(field string) string {
		for i, h := range norm {
			if used[i] {
				continue
			}
			if h == exactHeaders[field] {
				return bind(i)
			}
		}
		return ""
	}
	contains := func(keywords ...string) string {
		for i, h := range norm {
			if used[i] {
				continue
			}
			for _, k := range keywords {
				if strings.Contains(h, k) {
					return bind(i)
				}
			}
		}
		return ""
	}
	positional := func(i int) string {
		if i < len(headers) && !used[i] {
			return bind(i)
		}
		return ""
	}

	var cm ColumnMap
	cm.ID = exact("id")
	cm.Phone = exact("phone")
	cm.Email = exact("email")
	cm.FirstName = exact("first")
	cm.LastName = exact("last")
	cm.FullName = exact("name")

	if cm.Phone == "" {
		cm.Phone = contains("phone")
	}
	if cm.Email == "" {
		cm.Email = contains("mail")
	}
	if cm.FirstName == "" {
		cm.FirstName = contains("first")
	}
	if cm.LastName == "" {
		cm.LastName = contains("last", "surname")
	}

	if cm.FirstName != "" && cm.LastName != "" {
		cm.FullName = ""
	} else {
		// Release a lone first/last column so it can serve as the full name.
		for i, h := range headers {
			if h == cm.FirstName || h == cm.LastName {
				used[i] = false
			}
		}
		cm.FirstName, cm.LastName = "", ""
		if cm.FullName == "" {
			cm.FullName = contains("name")
		}
	}

	if cm.FullName == "" && cm.FirstName == "" {
		cm.FullName = positional(0)
	}
	if cm.Phone == "" {
		cm.Phone = positional(1)
	}
	if cm.Email == "" {
		cm.Email = positional(2)
	}

	return cm
}

// required lists the bound columns a record must carry.
func (cm ColumnMap) required() []string {
	var out []string
	for _, c := range []string{cm.FirstName, cm.LastName, cm.FullName, cm.Email, cm.Phone} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CSVAdapter converts rows of a delimited file.
type CSVAdapter struct {
	columns ColumnMap
}

// NewCSVAdapter creates an adapter for files with the given headers. With no
// headers, rows are expected to use the canonical field names.
func NewCSVAdapter(headers []string) *CSVAdapter {
	return &CSVAdapter{columns: DetectColumns(headers)}
}

// Columns returns the detected column mapping.
func (a *CSVAdapter) Columns() ColumnMap { return a.columns }

// Name implements Adapter.
func (a *CSVAdapter) Name() string { return SourceCSV }

// Validate implements Adapter.
func (a *CSVAdapter) Validate(rec Record) bool {
	req := a.columns.required()
	if len(req) == 0 {
		return false
	}
	for _, c := range req {
		if !rec.Has(c) {
			return false
		}
	}
	return true
}

// ToLead implements Adapter.
func (a *CSVAdapter) ToLead(rec Record) *model.Lead {
	cm := a.columns
	l := model.NewLead(SourceCSV)

	if cm.ID != "" {
		l.ID = rec.String(cm.ID)
	}
	if cm.FullName != "" {
		l.FirstName, l.LastName = SplitName(rec.String(cm.FullName))
	} else {
		l.FirstName = rec.String(cm.FirstName)
		l.LastName = rec.String(cm.LastName)
	}
	if cm.Email != "" {
		l.Email = rec.String(cm.Email)
	}
	if cm.Phone != "" {
		l.Phone = rec.String(cm.Phone)
	}
	l.RawData = rec.Copy()

	return l
}

// FromLead implements Adapter. Output always uses the canonical field names.
func (a *CSVAdapter) FromLead(l *model.Lead) Record {
	out := Record{
		"id":         l.ID,
		"first_name": l.FirstName,
		"last_name":  l.LastName,
		"email":      l.Email,
		"phone":      l.Phone,
	}
	for k, v := range verificationFields(l) {
		out[k] = v
	}
	return out
}
