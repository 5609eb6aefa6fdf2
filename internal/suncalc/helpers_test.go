package suncalc

import "time"

// Helsinki coordinates for testing
const (
	testLatitude  = 60.1699
	testLongitude = 24.9384
)

// Berlin coordinates, far enough south that civil and nautical twilight
// exist even at midsummer
const (
	berlinLatitude  = 52.5200
	berlinLongitude = 13.4050
)

// Longyearbyen coordinates, midnight sun from April to August
const (
	arcticLatitude  = 78.2232
	arcticLongitude = 15.6267
)

// newTestSunCalc creates a SunCalc instance with Helsinki coordinates.
func newTestSunCalc() *SunCalc {
	return NewSunCalc(testLatitude, testLongitude, 0, time.UTC)
}

// newBerlinSunCalc creates a SunCalc instance with Berlin coordinates.
func newBerlinSunCalc() *SunCalc {
	return NewSunCalc(berlinLatitude, berlinLongitude, 0, time.UTC)
}

// midsummerDate returns June 21, 2024 UTC - a date with predictable sun events.
func midsummerDate() time.Time {
	return time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
}

// winterSolsticeDate returns December 21, 2024 UTC.
func winterSolsticeDate() time.Time {
	return time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)
}
