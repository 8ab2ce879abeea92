package analytics

// PreviousPeriodFilter derives the window of identical length immediately
// preceding the filter's date range: previous_end = start, previous_start =
// start minus the range length in whole days (sub-day remainder truncated).
// Store/channel/status constraints carry over unchanged. Returns false when
// either bound is missing, in which case comparison is skipped.
func PreviousPeriodFilter(f Filter) (Filter, bool) {
	if f.StartDate == nil || f.EndDate == nil {
		return Filter{}, false
	}

	days := int(f.EndDate.Sub(*f.StartDate).Hours() / 24)
	prevStart := f.StartDate.AddDate(0, 0, -days)
	prevEnd := *f.StartDate

	prev := f
	prev.StartDate = &prevStart
	prev.EndDate = &prevEnd
	return prev, true
}

// PercentChange computes (current-previous)/previous*100, returning nil when
// the previous value is zero or negative so a missing baseline can never
// surface as Inf or NaN.
func PercentChange(current, previous float64) *float64 {
	if previous <= 0 {
		return nil
	}
	change := (current - previous) / previous * 100
	return &change
}
