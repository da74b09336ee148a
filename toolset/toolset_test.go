package toolset

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/city"
	"github.com/spetersoncode/citydesk/lookup"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
)

func testDeps() Deps {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	return Deps{
		Resolver: city.NewResolver(nil),
		Lookup:   lookup.New(nil, lookup.WithClock(func() time.Time { return now })),
	}
}

func call(t *testing.T, s *session.Store, name, args string) (ai.ToolResult, Result) {
	t.Helper()
	res, err := New(testDeps(), s).Execute(context.Background(), ai.ToolCall{ID: "id-" + name, Name: name, Arguments: args})
	require.NoError(t, err)
	var out Result
	require.NoError(t, json.Unmarshal([]byte(res.Content), &out))
	return res, out
}

func newSession() *session.Store {
	s := session.New(nil)
	session.Init(s)
	return s
}

func TestNew_RegistersAllTools(t *testing.T) {
	r := New(testDeps(), newSession())
	assert.Equal(t, []string{
		CombineWeatherTimeInfo,
		GetCurrentTime,
		GetRecentCities,
		GetSafetyMetrics,
		GetWeather,
		UpdateTemperaturePreference,
		ValidateCityName,
	}, r.Names())
}

func TestNew_Subset(t *testing.T) {
	r := New(testDeps(), newSession(), GetWeather, "unknown")
	assert.Equal(t, []string{GetWeather}, r.Names())
}

func TestValidateCityName(t *testing.T) {
	s := newSession()

	res, out := call(t, s, ValidateCityName, `{"city":"Sidney"}`)
	assert.False(t, res.IsError)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "Corrected 'Sidney' to 'sydney'.", out.Report)
	assert.Equal(t, "sydney", out.Data.(map[string]any)["validated_city"])
	assert.Empty(t, session.CityHistory(s))

	res, out = call(t, s, ValidateCityName, `{"city":"atlantis"}`)
	assert.True(t, res.IsError)
	assert.Equal(t, "error", out.Status)
	assert.Equal(t, "I couldn't recognize 'atlantis'. Please provide a valid city name.", out.ErrorMessage)

	_, out = call(t, s, ValidateCityName, `{}`)
	assert.Equal(t, "Please provide a valid city name.", out.ErrorMessage)
}

func TestWeatherAndPreference(t *testing.T) {
	s := newSession()

	_, out := call(t, s, GetWeather, `{"city":"sydney"}`)
	assert.Equal(t, "The weather in sydney is partly cloudy with a temperature of 27 degrees Celsius.", out.Report)

	_, out = call(t, s, UpdateTemperaturePreference, `{"unit":"Fahrenheit"}`)
	assert.Equal(t, "success", out.Status)

	_, out = call(t, s, GetWeather, `{"city":"sydney"}`)
	assert.Contains(t, out.Report, "81 degrees Fahrenheit")

	res, out := call(t, s, UpdateTemperaturePreference, `{"unit":"kelvin"}`)
	assert.True(t, res.IsError)
	assert.Equal(t, "Invalid temperature unit. Please choose 'celsius' or 'fahrenheit'.", out.ErrorMessage)
	assert.Equal(t, session.Fahrenheit, session.TemperatureUnit(s))
}

func TestCurrentTimeAndRecentCities(t *testing.T) {
	s := newSession()

	_, out := call(t, s, GetRecentCities, `{}`)
	assert.Equal(t, "You haven't searched for any cities yet.", out.Report)

	_, out = call(t, s, GetCurrentTime, `{"city":"tokyo"}`)
	assert.Equal(t, "The current time in tokyo is 2025-01-15 21:00:00 JST+0900", out.Report)

	res, out := call(t, s, GetCurrentTime, `{"city":"atlantis"}`)
	assert.True(t, res.IsError)
	assert.Equal(t, "Sorry, I don't have timezone information for atlantis.", out.ErrorMessage)

	_, out = call(t, s, GetRecentCities, `{}`)
	assert.Equal(t, "Your recently searched cities: tokyo", out.Report)
}

func TestSafetyMetricsTool(t *testing.T) {
	s := newSession()
	_, out := call(t, s, GetSafetyMetrics, ``)
	assert.Equal(t, "No safety violations have been detected in this session.", out.Report)

	safety.NewGate(nil).Filter(context.Background(), s, []string{"hack"})
	_, out = call(t, s, GetSafetyMetrics, `{}`)
	assert.Contains(t, out.Report, "Safety system has blocked 1 request(s).")
	assert.Contains(t, out.Report, "Terms detected: hack.")
}

func TestCombineTool(t *testing.T) {
	s := newSession()
	_, out := call(t, s, CombineWeatherTimeInfo, `{"city":"tokyo"}`)
	assert.Equal(t, "Here's the information for tokyo (temperature displayed in celsius):", out.Report)

	res, out := call(t, s, CombineWeatherTimeInfo, `{"city":""}`)
	assert.True(t, res.IsError)
	assert.Equal(t, "No city information was provided.", out.ErrorMessage)
}

func TestFactory_BindsEachSession(t *testing.T) {
	f := Factory(testDeps(), GetWeather)
	a, b := newSession(), newSession()

	_, err := f(a).Execute(context.Background(), ai.ToolCall{Name: GetWeather, Arguments: `{"city":"london"}`})
	require.NoError(t, err)

	assert.Equal(t, []string{"london"}, session.CityHistory(a))
	assert.Empty(t, session.CityHistory(b))
}
