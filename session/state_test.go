package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	s := New(nil)
	Init(s)

	assert.Equal(t, Celsius, TemperatureUnit(s))
	assert.Empty(t, CityHistory(s))
	assert.Equal(t, 0, Metrics(s).BlockedAttempts)

	SetTemperatureUnit(s, Fahrenheit)
	Init(s)
	assert.Equal(t, Fahrenheit, TemperatureUnit(s), "Init must not overwrite existing fields")
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
		ok   bool
	}{
		{"celsius", Celsius, true},
		{"  CELSIUS ", Celsius, true},
		{"Fahrenheit", Fahrenheit, true},
		{"kelvin", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseUnit(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "Celsius", Celsius.Label())
	assert.Equal(t, "Fahrenheit", Fahrenheit.Label())
}

func TestTemperatureUnit_DefaultsWithoutInit(t *testing.T) {
	s := New(nil)
	assert.Equal(t, Celsius, TemperatureUnit(s))

	s.Set(KeyTemperatureUnit, "fahrenheit")
	assert.Equal(t, Fahrenheit, TemperatureUnit(s), "plain strings from JSON reloads are accepted")

	s.Set(KeyTemperatureUnit, "rankine")
	assert.Equal(t, Celsius, TemperatureUnit(s))
}

func TestCityHistory_ReturnsCopy(t *testing.T) {
	s := New(nil)
	UpdateCityHistory(s, func(h []string) []string { return append(h, "tokyo") })

	h := CityHistory(s)
	h[0] = "mutated"
	assert.Equal(t, []string{"tokyo"}, CityHistory(s))
}

func TestUpdateMetrics(t *testing.T) {
	s := New(nil)
	Init(s)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	UpdateMetrics(s, func(m SafetyMetrics) SafetyMetrics {
		m.BlockedAttempts++
		m.LastBlockedTime = &at
		m.BlockedTermsDetected = append(m.BlockedTermsDetected, "bomb")
		return m
	})

	got := Metrics(s)
	assert.Equal(t, 1, got.BlockedAttempts)
	require.NotNil(t, got.LastBlockedTime)
	assert.True(t, at.Equal(*got.LastBlockedTime))
	assert.Equal(t, []string{"bomb"}, got.BlockedTermsDetected)

	got.BlockedTermsDetected[0] = "changed"
	assert.Equal(t, []string{"bomb"}, Metrics(s).BlockedTermsDetected)
}

func TestMetrics_SurviveReload(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()
	s := New(adapter)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Set(KeySafetyMetrics, SafetyMetrics{BlockedAttempts: 2, LastBlockedTime: &at, BlockedTermsDetected: []string{"hack", "hack"}})
	require.NoError(t, s.Sync(ctx))

	restored := New(adapter)
	require.NoError(t, restored.Reload(ctx))

	m := Metrics(restored)
	assert.Equal(t, 2, m.BlockedAttempts)
	assert.Equal(t, []string{"hack", "hack"}, m.BlockedTermsDetected)
	require.NotNil(t, m.LastBlockedTime)
	assert.True(t, at.Equal(*m.LastBlockedTime))
}

func TestLastResponseAndUserInput(t *testing.T) {
	s := New(nil)
	assert.Empty(t, LastResponse(s))

	SetLastResponse(s, "It is sunny.")
	SetUserInput(s, "weather in nyc")
	assert.Equal(t, "It is sunny.", LastResponse(s))
	assert.Equal(t, "weather in nyc", UserInput(s))
}
