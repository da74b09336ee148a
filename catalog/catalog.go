// Package catalog holds the static, read-only city tables: current weather
// facts, IANA timezones and a correction table for common misspellings.
//
// The default catalog is parsed once from an embedded YAML document and
// shared by all sessions without synchronization.
package catalog

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// WeatherFacts is the stored weather for one city. Both temperatures are
// precomputed; no unit conversion happens at lookup time.
type WeatherFacts struct {
	Condition  string `yaml:"condition" json:"condition"`
	Celsius    int    `yaml:"celsius" json:"temperature_celsius"`
	Fahrenheit int    `yaml:"fahrenheit" json:"temperature_fahrenheit"`
}

// Catalog is an immutable set of city tables.
type Catalog struct {
	weather     map[string]WeatherFacts
	timezones   map[string]string
	corrections map[string]string
}

type document struct {
	Weather     map[string]WeatherFacts `yaml:"weather"`
	Timezones   map[string]string       `yaml:"timezones"`
	Corrections map[string]string       `yaml:"corrections"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded tables: %v", err))
	}
	return c
})

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Parse builds a Catalog from a YAML document with weather, timezones and
// corrections sections. Keys and correction targets are lowercased.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	c := &Catalog{
		weather:     make(map[string]WeatherFacts, len(doc.Weather)),
		timezones:   make(map[string]string, len(doc.Timezones)),
		corrections: make(map[string]string, len(doc.Corrections)),
	}
	for k, v := range doc.Weather {
		if v.Condition == "" {
			return nil, fmt.Errorf("catalog: weather for %q has no condition", k)
		}
		c.weather[normalize(k)] = v
	}
	for k, v := range doc.Timezones {
		if v == "" {
			return nil, fmt.Errorf("catalog: timezone for %q is empty", k)
		}
		c.timezones[normalize(k)] = v
	}
	for k, v := range doc.Corrections {
		c.corrections[normalize(k)] = normalize(v)
	}
	return c, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Weather returns the weather facts for a canonical city.
func (c *Catalog) Weather(city string) (WeatherFacts, bool) {
	w, ok := c.weather[city]
	return w, ok
}

// Timezone returns the IANA timezone identifier for a canonical city.
func (c *Catalog) Timezone(city string) (string, bool) {
	tz, ok := c.timezones[city]
	return tz, ok
}

// Correction returns the canonical city a misspelling maps to.
func (c *Catalog) Correction(raw string) (string, bool) {
	city, ok := c.corrections[raw]
	return city, ok
}

// Known reports whether city is a key of the weather or timezone table.
func (c *Catalog) Known(city string) bool {
	if _, ok := c.weather[city]; ok {
		return true
	}
	_, ok := c.timezones[city]
	return ok
}

// Cities returns every canonical city in sorted order.
func (c *Catalog) Cities() []string {
	set := maps.Clone(c.timezones)
	for k := range c.weather {
		set[k] = ""
	}
	return slices.Sorted(maps.Keys(set))
}

// Lint lists correction keys that are already canonical city names. Such
// entries are redundant but harmless.
func (c *Catalog) Lint() []string {
	var redundant []string
	for k := range c.corrections {
		if c.Known(k) {
			redundant = append(redundant, k)
		}
	}
	slices.Sort(redundant)
	return redundant
}
