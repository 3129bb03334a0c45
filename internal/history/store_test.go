package history

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-verify/internal/model"
)

func lead(first, last, email, phone string, status model.OverallStatus) *model.Lead {
	l := model.NewLead("api")
	l.FirstName, l.LastName, l.Email, l.Phone = first, last, email, phone
	var factors []string
	if status == model.StatusFlagged {
		factors = []string{model.RiskInvalidPhone}
	}
	_ = l.ApplyVerification(&model.Verification{
		Status: model.VerificationStatus{OverallStatus: status, RiskFactors: factors},
	}, nil)
	return l
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	s.Add(lead("John", "Doe", "john@example.com", "5551234567", model.StatusVerified))
	s.Add(lead("Jane", "Roe", "jane@example.org", "5559876543", model.StatusFlagged))
	s.Add(lead("Jürgen", "Straße", "js@example.de", "4930123456", model.StatusVerified))
	return s
}

func TestAddAndGet(t *testing.T) {
	s := seeded(t)
	assert.Equal(t, 3, s.Len())

	e, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, 2, e.ID)
	assert.Equal(t, "Jane", e.Lead.FirstName)
	assert.Equal(t, 2026, e.VerifiedAt.Year())

	_, ok = s.Get(0)
	assert.False(t, ok)
	_, ok = s.Get(4)
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	s := seeded(t)

	tests := []struct {
		name      string
		filter    Filter
		wantIDs   []int
		wantTotal int
	}{
		{"all newest first", Filter{}, []int{3, 2, 1}, 3},
		{"status verified", Filter{Status: model.StatusVerified}, []int{3, 1}, 2},
		{"status flagged", Filter{Status: model.StatusFlagged}, []int{2}, 1},
		{"search name case-insensitive", Filter{Search: "JOHN"}, []int{1}, 1},
		{"search email", Filter{Search: "example.org"}, []int{2}, 1},
		{"search phone", Filter{Search: "4930"}, []int{3}, 1},
		{"search folds case", Filter{Search: "STRASSE"}, []int{3}, 1},
		{"search and status", Filter{Search: "example", Status: model.StatusFlagged}, []int{2}, 1},
		{"limit keeps total", Filter{Limit: 2}, []int{3, 2}, 3},
		{"no match", Filter{Search: "nobody"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := s.List(tt.filter)
			var ids []int
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestConcurrentAdd(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(lead("A", "B", "a@b.co", "1", model.StatusVerified))
			s.List(Filter{Search: "a"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	for id := 1; id <= 50; id++ {
		e, ok := s.Get(id)
		require.True(t, ok)
		assert.Equal(t, id, e.ID)
	}
}
