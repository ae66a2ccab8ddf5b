package services

import (
	"fmt"
	"time"
)

// AcademicYearFromDate returns the academic year label for a date. UK years
// run August to July and are written "2025/2026"; Australian establishments
// follow calendar years, written "2025/2025".
func AcademicYearFromDate(date time.Time, australian bool) string {
	year := date.Year()
	if australian {
		return fmt.Sprintf("%d/%d", year, year)
	}
	if date.Month() >= time.August {
		return fmt.Sprintf("%d/%d", year, year+1)
	}
	return fmt.Sprintf("%d/%d", year-1, year)
}

// AcademicYearFor applies the establishment convention. useStandardYear,
// when set, overrides the Australian flag: true (or unset) means the UK
// August-July year, false defers to the Australian flag.
func AcademicYearFor(date time.Time, australian bool, useStandardYear *bool) string {
	if useStandardYear == nil || *useStandardYear {
		return AcademicYearFromDate(date, false)
	}
	if australian {
		return AcademicYearFromDate(date, true)
	}
	return AcademicYearFromDate(date, false)
}
