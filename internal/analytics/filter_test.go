package analytics

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "date only",
			input: "2024-01-15",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "datetime without zone",
			input: "2024-01-15T13:45:30",
			want:  time.Date(2024, 1, 15, 13, 45, 30, 0, time.UTC),
		},
		{
			name:  "datetime with trailing Z",
			input: "2024-01-15T13:45:30Z",
			want:  time.Date(2024, 1, 15, 13, 45, 30, 0, time.UTC),
		},
		{
			name:  "datetime with offset",
			input: "2024-01-15T13:45:30-03:00",
			want:  time.Date(2024, 1, 15, 16, 45, 30, 0, time.UTC),
		},
		{
			name:    "malformed",
			input:   "15/01/2024",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToFilterRejectsMalformedTimestamps(t *testing.T) {
	req := FilterRequest{
		DateRange: &DateRangeRequest{StartDate: "not-a-date"},
	}
	if _, err := req.ToFilter(); err == nil {
		t.Error("Expected error for malformed start_date")
	}

	req = FilterRequest{
		DateRange: &DateRangeRequest{StartDate: "2024-01-01", EndDate: "garbage"},
	}
	if _, err := req.ToFilter(); err == nil {
		t.Error("Expected error for malformed end_date")
	}
}

func TestToFilterCarriesConstraints(t *testing.T) {
	req := FilterRequest{
		DateRange:  &DateRangeRequest{StartDate: "2024-01-01", EndDate: "2024-01-31"},
		StoreIDs:   []int64{3, 1},
		ChannelIDs: []int64{2},
		Status:     "CANCELLED",
	}

	f, err := req.ToFilter()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if f.StartDate == nil || f.EndDate == nil {
		t.Fatal("Expected both date bounds to be set")
	}
	if len(f.StoreIDs) != 2 || len(f.ChannelIDs) != 1 {
		t.Error("Expected id filters to carry over")
	}
	if f.Status != "CANCELLED" {
		t.Errorf("Expected status to carry over, got %q", f.Status)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	f := Filter{}.Normalize(now)
	if f.EndDate == nil || !f.EndDate.Equal(now) {
		t.Errorf("Expected end date to default to now, got %v", f.EndDate)
	}
	wantStart := now.AddDate(0, 0, -30)
	if f.StartDate == nil || !f.StartDate.Equal(wantStart) {
		t.Errorf("Expected start date 30 days before end, got %v", f.StartDate)
	}

	// A present end date anchors the default start.
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f = Filter{EndDate: &end}.Normalize(now)
	if !f.StartDate.Equal(end.AddDate(0, 0, -30)) {
		t.Errorf("Expected start anchored to provided end, got %v", f.StartDate)
	}

	// Fully specified filters pass through untouched.
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f = Filter{StartDate: &start, EndDate: &end}.Normalize(now)
	if !f.StartDate.Equal(start) || !f.EndDate.Equal(end) {
		t.Error("Expected explicit bounds to be preserved")
	}
}

func TestCacheParamsCanonical(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	a := Filter{StartDate: &start, EndDate: &end, StoreIDs: []int64{3, 1, 2}}.CacheParams()
	b := Filter{StartDate: &start, EndDate: &end, StoreIDs: []int64{2, 3, 1}}.CacheParams()

	if a["store_ids"] != "1,2,3" || b["store_ids"] != "1,2,3" {
		t.Errorf("Expected sorted id list, got %q and %q", a["store_ids"], b["store_ids"])
	}
	if a["start_date"] != "2024-01-01T00:00:00Z" {
		t.Errorf("Expected RFC3339 start date, got %q", a["start_date"])
	}

	empty := Filter{}.CacheParams()
	if len(empty) != 0 {
		t.Errorf("Expected no params for an empty filter, got %v", empty)
	}
}
