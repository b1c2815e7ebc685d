package domain

import "time"

// Season is a date-range partition key. Every record belongs to at most one
// season; records outside all defined ranges are dropped from season-scoped
// reports.
type Season struct {
	Name  string
	Start time.Time
	End   time.Time // inclusive
}

// Contains reports whether t falls inside the season's range.
func (s Season) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(s.Start) && !t.After(s.End)
}

// UndefinedSeason labels rows whose date falls outside every configured range.
const UndefinedSeason = "Undefined Season"

// DefaultSeasons mirrors the season definitions of the source system.
func DefaultSeasons() []Season {
	return []Season{
		{
			Name:  "2023-2024",
			Start: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:  "2024-2025",
			Start: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
		},
	}
}

// SeasonFor returns the name of the season containing t, or UndefinedSeason.
func SeasonFor(t time.Time, seasons []Season) string {
	for _, s := range seasons {
		if s.Contains(t) {
			return s.Name
		}
	}
	return UndefinedSeason
}
