// Package lookup answers weather and time questions for canonical cities and
// manages the per-session temperature preference.
//
// Every operation takes the session store explicitly. Successful weather and
// time lookups append the city to the session history; failures leave the
// session untouched.
package lookup

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/spetersoncode/citydesk/catalog"
	"github.com/spetersoncode/citydesk/city"
	"github.com/spetersoncode/citydesk/history"
	"github.com/spetersoncode/citydesk/session"
)

// TimeLayout renders wall-clock time with zone abbreviation and UTC offset.
const TimeLayout = "2006-01-02 15:04:05 MST-0700"

// Service performs fact lookups against a catalog.
type Service struct {
	catalog *catalog.Catalog
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service. A nil catalog uses catalog.Default.
func New(c *catalog.Catalog, opts ...Option) *Service {
	if c == nil {
		c = catalog.Default()
	}
	s := &Service{
		catalog: c,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the service reads.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// WeatherReport is the result of a weather lookup.
type WeatherReport struct {
	City        string       `json:"city"`
	Condition   string       `json:"condition"`
	Temperature int          `json:"temperature"`
	Unit        session.Unit `json:"unit"`
	Report      string       `json:"report"`
}

// Weather reports the stored weather for city in the session's preferred
// unit and records city in the history.
func (s *Service) Weather(st *session.Store, cityName string) (WeatherReport, error) {
	key := normalize(cityName)
	facts, ok := s.catalog.Weather(key)
	if !ok {
		s.logger.Info("weather not available", zap.String("city", cityName))
		return WeatherReport{}, &NotFoundError{Kind: KindWeather, City: cityName}
	}

	unit := session.TemperatureUnit(st)
	temp := facts.Celsius
	if unit == session.Fahrenheit {
		temp = facts.Fahrenheit
	}

	history.Record(st, key)
	s.logger.Debug("weather lookup", zap.String("city", key), zap.String("unit", string(unit)))

	return WeatherReport{
		City:        key,
		Condition:   facts.Condition,
		Temperature: temp,
		Unit:        unit,
		Report: fmt.Sprintf("The weather in %s is %s with a temperature of %d degrees %s.",
			strings.TrimSpace(cityName), facts.Condition, temp, unit.Label()),
	}, nil
}

// TimeReport is the result of a time lookup.
type TimeReport struct {
	City     string    `json:"city"`
	Timezone string    `json:"timezone"`
	Time     time.Time `json:"time"`
	Report   string    `json:"report"`
}

// Time reports the current wall-clock time in city and records city in the
// history.
func (s *Service) Time(st *session.Store, cityName string) (TimeReport, error) {
	key := normalize(cityName)
	tz, ok := s.catalog.Timezone(key)
	if !ok {
		s.logger.Info("timezone not available", zap.String("city", cityName))
		return TimeReport{}, &NotFoundError{Kind: KindTimezone, City: cityName}
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.logger.Warn("load timezone", zap.String("tz", tz), zap.Error(err))
		return TimeReport{}, &NotFoundError{Kind: KindTimezone, City: cityName}
	}
	now := s.now().In(loc)

	history.Record(st, key)
	s.logger.Debug("time lookup", zap.String("city", key), zap.String("tz", tz))

	return TimeReport{
		City:     key,
		Timezone: tz,
		Time:     now,
		Report:   fmt.Sprintf("The current time in %s is %s", strings.TrimSpace(cityName), now.Format(TimeLayout)),
	}, nil
}

// Confirmation acknowledges a preference change.
type Confirmation struct {
	Unit    session.Unit `json:"unit"`
	Message string       `json:"message"`
}

// UpdateTemperaturePreference sets the session's display unit. The input is
// trimmed and lowercased; anything but celsius or fahrenheit is rejected
// without changing the session.
func (s *Service) UpdateTemperaturePreference(st *session.Store, unit string) (Confirmation, error) {
	u, ok := session.ParseUnit(unit)
	if !ok {
		return Confirmation{}, &UnitError{Unit: unit}
	}
	session.SetTemperatureUnit(st, u)
	s.logger.Debug("temperature unit updated", zap.String("unit", string(u)))
	return Confirmation{
		Unit:    u,
		Message: fmt.Sprintf("Your temperature unit preference has been updated to %s.", u),
	}, nil
}

// RecentCitiesReport lists the session's history.
type RecentCitiesReport struct {
	Cities  []string `json:"cities"`
	Message string   `json:"message"`
}

// RecentCities reports the session's history. It never fails.
func (s *Service) RecentCities(st *session.Store) RecentCitiesReport {
	cities := history.Recent(st)
	if len(cities) == 0 {
		return RecentCitiesReport{
			Cities:  []string{},
			Message: "You haven't searched for any cities yet.",
		}
	}
	return RecentCitiesReport{
		Cities:  cities,
		Message: "Your recently searched cities: " + strings.Join(cities, ", "),
	}
}

// CombinedReport is the final answer of the parallel pipeline.
type CombinedReport struct {
	City    string       `json:"city"`
	Unit    session.Unit `json:"unit"`
	Message string       `json:"message"`
}

// Combine builds the combined answer for city from already formatted
// section reports. Empty sections are skipped.
func (s *Service) Combine(st *session.Store, cityName string, sections ...string) (CombinedReport, error) {
	cityName = strings.TrimSpace(cityName)
	if cityName == "" {
		return CombinedReport{}, &city.InputError{Msg: "No city information was provided."}
	}
	unit := session.TemperatureUnit(st)

	lines := []string{fmt.Sprintf("Here's the information for %s (temperature displayed in %s):", cityName, unit)}
	for _, sec := range sections {
		if sec = strings.TrimSpace(sec); sec != "" {
			lines = append(lines, sec)
		}
	}
	return CombinedReport{
		City:    cityName,
		Unit:    unit,
		Message: strings.Join(lines, "\n"),
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
