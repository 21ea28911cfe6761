// Package ageband maps a child's date of birth to the coarse grade-level
// grouping that selects which assessment question set applies.
package ageband

import "time"

// Band is one of the four age bands the assessment catalog is scoped by.
type Band string

const (
	BandK2 Band = "K-2"
	Band35 Band = "3-5"
	BandMS Band = "MS"
	BandHS Band = "HS+"
)

// Valid reports whether b is one of the known bands.
func (b Band) Valid() bool {
	switch b {
	case BandK2, Band35, BandMS, BandHS:
		return true
	}
	return false
}

// Years returns the calendar-aware age in whole years at now: the month and
// day are compared so a birthday later in the year does not count yet.
func Years(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// BandFor classifies a date of birth at the given instant.
//
// The ranges are inclusive on both ends and checked in order, so an age of
// exactly 8 resolves to K-2 and exactly 11 to 3-5. Under 5 falls back to K-2.
// The overlap at the boundaries is deliberate, matching the published
// placement rules; do not collapse the ranges without confirming new ones.
func BandFor(dob, now time.Time) Band {
	age := Years(dob, now)
	switch {
	case age >= 5 && age <= 8:
		return BandK2
	case age >= 8 && age <= 11:
		return Band35
	case age >= 11 && age <= 14:
		return BandMS
	case age >= 14:
		return BandHS
	}
	return BandK2
}
