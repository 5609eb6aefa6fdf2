// Package nightwindow resolves the nocturnal observation window of a night:
// the local time span between evening and morning twilight, or between
// configured static clock times, padded by a configurable buffer.
package nightwindow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
	"github.com/tphakala/fox-report/internal/logging"
	"github.com/tphakala/fox-report/internal/suncalc"
)

// NightRange is one resolved observation window. Start is always strictly
// before End.
type NightRange struct {
	Date   time.Time // calendar date the night starts on, midnight local
	Start  time.Time // window start in local time, buffer applied
	End    time.Time // window end in local time, buffer applied
	Method string    // conf.MethodAstronomical, conf.MethodStatic or conf.MethodFallback
}

// Duration returns the length of the window.
func (nr NightRange) Duration() time.Duration {
	return nr.End.Sub(nr.Start)
}

// clockTime is a parsed HH:MM time of day.
type clockTime struct {
	hour   int
	minute int
}

// Resolver converts calendar dates into night windows. It is immutable after
// New and safe for concurrent use.
type Resolver struct {
	latitude    float64
	longitude   float64
	hasLocation bool
	loc         *time.Location
	depression  float64
	buffer      time.Duration
	useStatic   bool // static times are the configured strategy
	hasStatic   bool // static times are available, as strategy or fallback
	staticStart clockTime
	staticEnd   clockTime
	sun         *suncalc.SunCalc
	logger      *slog.Logger
}

// New builds a Resolver from settings. It fails with a configuration error
// on an unrecognized twilight type, a negative buffer or unparseable static
// times. A missing or unknown timezone degrades to UTC with a warning
// instead of failing.
func New(settings *conf.Settings) (*Resolver, error) {
	logger := logging.ForService("nightwindow")
	if logger == nil {
		logger = slog.Default().With("service", "nightwindow")
	}

	depression, err := depressionFor(settings.Advanced.TwilightType)
	if err != nil {
		return nil, err
	}

	if settings.Advanced.BufferMinutes < 0 {
		return nil, errors.Newf("buffer minutes must be non-negative, got %d", settings.Advanced.BufferMinutes).
			Component("nightwindow").
			Category(errors.CategoryConfiguration).
			Context("buffer_minutes", settings.Advanced.BufferMinutes).
			Build()
	}

	loc := resolveTimezone(settings.Location.Timezone, logger)

	r := &Resolver{
		latitude:    settings.Location.Latitude,
		longitude:   settings.Location.Longitude,
		hasLocation: settings.Location.Latitude != 0 || settings.Location.Longitude != 0,
		loc:         loc,
		depression:  depression,
		buffer:      time.Duration(settings.Advanced.BufferMinutes) * time.Minute,
		useStatic:   settings.StaticTimes.Enabled,
		logger:      logger,
	}

	// Static times are parsed up front so malformed values fail at
	// construction, not in the middle of a multi-night resolution
	if settings.StaticTimes.StartTime != "" && settings.StaticTimes.EndTime != "" {
		start, err := parseClockTime(settings.StaticTimes.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := parseClockTime(settings.StaticTimes.EndTime)
		if err != nil {
			return nil, err
		}
		r.staticStart = start
		r.staticEnd = end
		r.hasStatic = true
	}

	if r.useStatic && !r.hasStatic {
		return nil, errors.Newf("static times are enabled but starttime or endtime is missing").
			Component("nightwindow").
			Category(errors.CategoryConfiguration).
			Build()
	}

	r.sun = suncalc.NewSunCalc(settings.Location.Latitude, settings.Location.Longitude,
		settings.Location.Elevation, loc)

	return r, nil
}

// Location returns the timezone windows are localized to.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Today returns the current calendar date in the resolver's timezone.
func (r *Resolver) Today() time.Time {
	now := clock.Now().In(r.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
}

// Resolve computes the night window starting on the given calendar date.
// A zero date means tonight. The window runs from evening twilight on the
// date to morning twilight on the following day, or between the static
// clock times, with the buffer subtracted from the start and added to the
// end. When the twilight computation fails and static times are configured,
// the static window is used instead and the result is marked as a fallback.
func (r *Resolver) Resolve(date time.Time) (NightRange, error) {
	var night time.Time
	if date.IsZero() {
		night = r.Today()
	} else {
		night = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, r.loc)
	}

	if r.useStatic {
		return r.buffered(r.staticWindow(night, conf.MethodStatic)), nil
	}

	if !r.hasLocation {
		if r.hasStatic {
			// Static times double as the window when no location is
			// configured, same as when twilight computation fails
			r.logger.Warn("Location not configured, using static times",
				"date", night.Format("2006-01-02"))
			return r.buffered(r.staticWindow(night, conf.MethodFallback)), nil
		}
		return NightRange{}, errors.Newf("location latitude and longitude are required when static times are not configured").
			Component("nightwindow").
			Category(errors.CategoryConfiguration).
			Context("date", night.Format("2006-01-02")).
			Build()
	}

	times, err := r.sun.GetNightTimes(night, r.depression)
	if err != nil {
		if r.hasStatic {
			r.logger.Warn("Twilight computation failed, falling back to static times",
				"date", night.Format("2006-01-02"),
				"error", err)
			return r.buffered(r.staticWindow(night, conf.MethodFallback)), nil
		}
		return NightRange{}, errors.New(err).
			Component("nightwindow").
			Category(errors.CategoryTimeResolution).
			Context("date", night.Format("2006-01-02")).
			Context("latitude", r.latitude).
			Context("longitude", r.longitude).
			Build()
	}

	return r.buffered(NightRange{
		Date:   night,
		Start:  times.Dusk,
		End:    times.Dawn,
		Method: conf.MethodAstronomical,
	}), nil
}

// ResolveLookback computes the window of the night that started nightsBack
// days before today: 0 is tonight, 1 is last night.
func (r *Resolver) ResolveLookback(nightsBack int) (NightRange, error) {
	if nightsBack < 0 {
		return NightRange{}, errors.Newf("nights back must be non-negative, got %d", nightsBack).
			Component("nightwindow").
			Category(errors.CategoryValidation).
			Build()
	}
	return r.Resolve(r.Today().AddDate(0, 0, -nightsBack))
}

// ResolveMany computes windows for the last count nights, most recent first.
// The slice always holds exactly count entries; the first failed night aborts
// the whole resolution rather than silently shortening the result.
func (r *Resolver) ResolveMany(count int) ([]NightRange, error) {
	return r.ResolveManyFrom(time.Time{}, count)
}

// ResolveManyFrom computes windows for count nights, most recent first, where
// the most recent night starts on the given calendar date. A zero date means
// tonight.
func (r *Resolver) ResolveManyFrom(date time.Time, count int) ([]NightRange, error) {
	if count < 1 {
		return nil, errors.Newf("night count must be at least 1, got %d", count).
			Component("nightwindow").
			Category(errors.CategoryValidation).
			Build()
	}

	start := date
	if start.IsZero() {
		start = r.Today()
	} else {
		start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, r.loc)
	}

	ranges := make([]NightRange, 0, count)
	for nightsBack := 0; nightsBack < count; nightsBack++ {
		nr, err := r.Resolve(start.AddDate(0, 0, -nightsBack))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve night %d of %d: %w", nightsBack+1, count, err)
		}
		ranges = append(ranges, nr)
	}
	return ranges, nil
}

// staticWindow builds an unbuffered window from the parsed static times.
// An end time of day at or before the start rolls to the next day.
func (r *Resolver) staticWindow(night time.Time, method string) NightRange {
	start := time.Date(night.Year(), night.Month(), night.Day(),
		r.staticStart.hour, r.staticStart.minute, 0, 0, r.loc)
	end := time.Date(night.Year(), night.Month(), night.Day(),
		r.staticEnd.hour, r.staticEnd.minute, 0, 0, r.loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return NightRange{Date: night, Start: start, End: end, Method: method}
}

// buffered pads both window edges. The buffer works on absolute time, so a
// daylight-saving transition inside the window does not distort it.
func (r *Resolver) buffered(nr NightRange) NightRange {
	nr.Start = nr.Start.Add(-r.buffer)
	nr.End = nr.End.Add(r.buffer)
	return nr
}

// depressionFor maps a twilight type name to its solar depression angle.
// Unrecognized names are a configuration error, never a silent default.
func depressionFor(twilightType string) (float64, error) {
	switch twilightType {
	case conf.TwilightCivil:
		return suncalc.DepressionCivil, nil
	case conf.TwilightNautical:
		return suncalc.DepressionNautical, nil
	case conf.TwilightAstronomical:
		return suncalc.DepressionAstronomical, nil
	default:
		return 0, errors.Newf("unrecognized twilight type '%s'", twilightType).
			Component("nightwindow").
			Category(errors.CategoryConfiguration).
			Context("twilight_type", twilightType).
			Build()
	}
}

// resolveTimezone loads the configured IANA timezone, degrading to UTC with
// a warning when the name is empty or unknown.
func resolveTimezone(name string, logger *slog.Logger) *time.Location {
	if name == "" {
		logger.Warn("Timezone not configured, using UTC")
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("Unknown timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// parseClockTime parses an "HH:MM" string.
func parseClockTime(value string) (clockTime, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return clockTime{}, errors.New(fmt.Errorf("'%s' is not a valid HH:MM clock time: %w", value, err)).
			Component("nightwindow").
			Category(errors.CategoryConfiguration).
			Context("value", value).
			Build()
	}
	return clockTime{hour: parsed.Hour(), minute: parsed.Minute()}, nil
}
