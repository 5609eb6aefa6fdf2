// internal/suncalc/suncalc.go

package suncalc

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// Solar depression angles in degrees below the horizon for the supported
// twilight depths.
const (
	DepressionCivil        = 6.0
	DepressionNautical     = 12.0
	DepressionAstronomical = 18.0
)

// NightTimes holds the twilight boundaries of one night in local time.
// Dusk falls on the night's own date, Dawn on the following day.
type NightTimes struct {
	Dusk time.Time // evening twilight end in local time
	Dawn time.Time // morning twilight start in local time, next day
}

// SunEventTimes holds the calculated sun event times for a single date in local time
type SunEventTimes struct {
	Dawn    time.Time // Morning twilight start in local time
	Sunrise time.Time // Sunrise in local time
	Sunset  time.Time // Sunset in local time
	Dusk    time.Time // Evening twilight end in local time
}

// nightCacheEntry holds the cached night times for a given date and depression
type nightCacheEntry struct {
	times NightTimes // Night times in local time
	date  time.Time  // Date for which the night times are cached
}

// eventCacheEntry holds the cached sun event times for a given date and depression
type eventCacheEntry struct {
	times SunEventTimes // Sun event times in local time
	date  time.Time     // Date for which the sun event times are cached
}

// SunCalc handles caching and calculation of sun event times
type SunCalc struct {
	nightCache map[string]nightCacheEntry // Cache of night times per date and depression
	eventCache map[string]eventCacheEntry // Cache of sun event times per date and depression
	lock       sync.RWMutex               // Lock for cache access
	observer   astral.Observer            // Observer for sun event calculations
	loc        *time.Location             // Timezone the results are localized to
}

// NewSunCalc creates a new SunCalc instance for the given observer position.
// A nil location localizes results to UTC.
func NewSunCalc(latitude, longitude, elevation float64, loc *time.Location) *SunCalc {
	if loc == nil {
		loc = time.UTC
	}
	return &SunCalc{
		nightCache: make(map[string]nightCacheEntry),
		eventCache: make(map[string]eventCacheEntry),
		observer:   astral.Observer{Latitude: latitude, Longitude: longitude, Elevation: elevation},
		loc:        loc,
	}
}

// cacheKey builds the cache key for a date and depression pair
func cacheKey(date time.Time, depression float64) string {
	return fmt.Sprintf("%s/%.1f", date.Format("2006-01-02"), depression)
}

// GetNightTimes returns the twilight boundaries of the night starting on the
// given date: dusk on the date itself and dawn on the following day. Results
// are cached per date and depression. At high latitudes around midsummer the
// sun may never reach the requested depression, in which case an error is
// returned.
func (sc *SunCalc) GetNightTimes(date time.Time, depression float64) (NightTimes, error) {
	key := cacheKey(date, depression)

	// Acquire a read lock and check if the night is in the cache
	sc.lock.RLock()
	entry, exists := sc.nightCache[key]
	sc.lock.RUnlock()

	// If the night exists in the cache and matches the requested date, return the cached times
	if exists && entry.date.Equal(date) {
		return entry.times, nil
	}

	// If not in cache, calculate the night times
	times, err := sc.calculateNightTimes(date, depression)
	if err != nil {
		return NightTimes{}, err
	}

	// Acquire a write lock and update the cache with the new times
	sc.lock.Lock()
	sc.nightCache[key] = nightCacheEntry{times: times, date: date}
	sc.lock.Unlock()

	// Return the calculated times
	return times, nil
}

// calculateNightTimes calculates the twilight boundaries of one night
func (sc *SunCalc) calculateNightTimes(date time.Time, depression float64) (NightTimes, error) {
	// Calculate dusk on the night's own date
	dusk, err := astral.Dusk(sc.observer, date, depression)
	if err != nil {
		return NightTimes{}, fmt.Errorf("failed to calculate dusk: %w", err)
	}

	// Calculate dawn on the following day, the night spans midnight
	dawn, err := astral.Dawn(sc.observer, date.AddDate(0, 0, 1), depression)
	if err != nil {
		return NightTimes{}, fmt.Errorf("failed to calculate dawn: %w", err)
	}

	return NightTimes{
		Dusk: dusk.In(sc.loc),
		Dawn: dawn.In(sc.loc),
	}, nil
}

// GetSunEventTimes returns the sun event times for a given date, using cache if available
func (sc *SunCalc) GetSunEventTimes(date time.Time, depression float64) (SunEventTimes, error) {
	key := cacheKey(date, depression)

	// Acquire a read lock and check if the date is in the cache
	sc.lock.RLock()
	entry, exists := sc.eventCache[key]
	sc.lock.RUnlock()

	// If the date exists in the cache and matches the requested date, return the cached times
	if exists && entry.date.Equal(date) {
		return entry.times, nil
	}

	// If not in cache, calculate the sun event times
	times, err := sc.calculateSunEventTimes(date, depression)
	if err != nil {
		return SunEventTimes{}, err
	}

	// Acquire a write lock and update the cache with the new times
	sc.lock.Lock()
	sc.eventCache[key] = eventCacheEntry{times: times, date: date}
	sc.lock.Unlock()

	// Return the calculated times
	return times, nil
}

// calculateSunEventTimes calculates the sun event times for a given date
func (sc *SunCalc) calculateSunEventTimes(date time.Time, depression float64) (SunEventTimes, error) {
	// Calculate dawn
	dawn, err := astral.Dawn(sc.observer, date, depression)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate dawn: %w", err)
	}

	// Calculate sunrise
	sunrise, err := astral.Sunrise(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	// Calculate sunset
	sunset, err := astral.Sunset(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	// Calculate dusk
	dusk, err := astral.Dusk(sc.observer, date, depression)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate dusk: %w", err)
	}

	// Return the calculated sun event times localized to the configured timezone
	return SunEventTimes{
		Dawn:    dawn.In(sc.loc),
		Sunrise: sunrise.In(sc.loc),
		Sunset:  sunset.In(sc.loc),
		Dusk:    dusk.In(sc.loc),
	}, nil
}

// GetSunriseTime returns the sunrise time for a given date
func (sc *SunCalc) GetSunriseTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date, DepressionCivil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunrise, nil
}

// GetSunsetTime returns the sunset time for a given date
func (sc *SunCalc) GetSunsetTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date, DepressionCivil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunset, nil
}
