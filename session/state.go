package session

import (
	"slices"
	"strings"
	"time"
)

// Keys of the fields shared by the city agents.
const (
	KeyTemperatureUnit = "temperature_unit"
	KeyCityHistory     = "city_history"
	KeySafetyMetrics   = "safety_metrics"
	KeyLastResponse    = "last_response"

	// KeyUserInput holds the pending request text a pipeline is working on.
	KeyUserInput = "user_input"
)

// Unit is a temperature display unit.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ParseUnit trims and lowercases s and reports whether it names a unit.
func ParseUnit(s string) (Unit, bool) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case Celsius, Fahrenheit:
		return u, true
	}
	return "", false
}

// Label returns the capitalized unit name used in reports.
func (u Unit) Label() string {
	if u == Fahrenheit {
		return "Fahrenheit"
	}
	return "Celsius"
}

// SafetyMetrics records what the safety gate has blocked in a session.
type SafetyMetrics struct {
	BlockedAttempts      int        `json:"blocked_attempts"`
	LastBlockedTime      *time.Time `json:"last_blocked_time"`
	BlockedTermsDetected []string   `json:"blocked_terms_detected"`
}

// Clone returns a deep copy of m.
func (m SafetyMetrics) Clone() SafetyMetrics {
	out := m
	if m.LastBlockedTime != nil {
		t := *m.LastBlockedTime
		out.LastBlockedTime = &t
	}
	out.BlockedTermsDetected = slices.Clone(m.BlockedTermsDetected)
	return out
}

// Init applies the default of every shared field that is still absent.
// It is idempotent and runs before each agent invocation.
func Init(s *Store) {
	must(s)
	s.GetOrInit(KeyTemperatureUnit, Celsius)
	s.GetOrInit(KeyCityHistory, []string{})
	s.GetOrInit(KeySafetyMetrics, SafetyMetrics{BlockedTermsDetected: []string{}})
}

// TemperatureUnit returns the preferred unit, defaulting to Celsius.
func TemperatureUnit(s *Store) Unit {
	u, ok := Get[Unit](s, KeyTemperatureUnit)
	if !ok {
		return Celsius
	}
	if parsed, ok := ParseUnit(string(u)); ok {
		return parsed
	}
	return Celsius
}

// SetTemperatureUnit overwrites the preferred unit.
func SetTemperatureUnit(s *Store, u Unit) {
	must(s).Set(KeyTemperatureUnit, u)
}

// CityHistory returns a copy of the recently looked-up cities, oldest first.
func CityHistory(s *Store) []string {
	h, _ := Get[[]string](s, KeyCityHistory)
	return slices.Clone(h)
}

// UpdateCityHistory replaces the history with fn(current) atomically.
func UpdateCityHistory(s *Store, fn func([]string) []string) []string {
	return Update(s, KeyCityHistory, fn)
}

// Metrics returns a copy of the safety metrics.
func Metrics(s *Store) SafetyMetrics {
	m, _ := Get[SafetyMetrics](s, KeySafetyMetrics)
	return m.Clone()
}

// UpdateMetrics replaces the safety metrics with fn(current) atomically.
func UpdateMetrics(s *Store, fn func(SafetyMetrics) SafetyMetrics) SafetyMetrics {
	return Update(s, KeySafetyMetrics, func(m SafetyMetrics) SafetyMetrics {
		return fn(m.Clone())
	})
}

// LastResponse returns the most recent output text.
func LastResponse(s *Store) string {
	v, _ := Get[string](s, KeyLastResponse)
	return v
}

// SetLastResponse records the most recent output text.
func SetLastResponse(s *Store, text string) {
	must(s).Set(KeyLastResponse, text)
}

// UserInput returns the pending request text.
func UserInput(s *Store) string {
	v, _ := Get[string](s, KeyUserInput)
	return v
}

// SetUserInput records the pending request text.
func SetUserInput(s *Store, text string) {
	must(s).Set(KeyUserInput, text)
}
