// Package city normalizes free-text city names to canonical catalog keys.
package city

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	ai "github.com/spetersoncode/citydesk"
	"github.com/spetersoncode/citydesk/catalog"
)

// ErrInvalidInput is returned when no city name was supplied.
var ErrInvalidInput = &InputError{Msg: "Please provide a valid city name."}

// ErrUnrecognizedCity matches any *UnrecognizedCityError via errors.Is.
var ErrUnrecognizedCity = errors.New("city: unrecognized")

// InputError reports a missing or malformed argument.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string              { return "city: invalid input: " + e.Msg }
func (e *InputError) UserMessage() string        { return e.Msg }
func (e *InputError) Category() ai.ErrorCategory { return ai.ErrorUserInput }

// Is makes every InputError match ErrInvalidInput.
func (e *InputError) Is(target error) bool {
	_, ok := target.(*InputError)
	return ok
}

// UnrecognizedCityError reports input that matched neither a catalog table
// nor a correction.
type UnrecognizedCityError struct {
	Raw string
}

func (e *UnrecognizedCityError) Error() string {
	return fmt.Sprintf("city: unrecognized %q", e.Raw)
}

func (e *UnrecognizedCityError) UserMessage() string {
	return fmt.Sprintf("I couldn't recognize '%s'. Please provide a valid city name.", e.Raw)
}

func (e *UnrecognizedCityError) Category() ai.ErrorCategory { return ai.ErrorUserInput }

func (e *UnrecognizedCityError) Is(target error) bool {
	return target == ErrUnrecognizedCity
}

// Resolution is a successfully resolved city.
type Resolution struct {
	// City is the canonical lowercase catalog key.
	City string `json:"validated_city"`
	// Raw is the input exactly as given.
	Raw string `json:"original_input"`
	// Corrected is true when City came from the correction table.
	Corrected bool `json:"corrected"`
}

// Message describes the resolution for display.
func (r Resolution) Message() string {
	if r.Corrected {
		return fmt.Sprintf("Corrected '%s' to '%s'.", r.Raw, r.City)
	}
	return fmt.Sprintf("'%s' is a valid city.", r.City)
}

// Resolver maps raw input to canonical cities. It has no mutable state.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver creates a Resolver over c. A nil catalog uses catalog.Default.
func NewResolver(c *catalog.Catalog) *Resolver {
	if c == nil {
		c = catalog.Default()
	}
	return &Resolver{catalog: c}
}

// Resolve trims and lowercases raw and looks it up, first in the catalog
// tables and then in the correction table.
//
// Resolve never touches session state; only fact lookups record history.
func (r *Resolver) Resolve(raw string) (Resolution, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return Resolution{}, ErrInvalidInput
	}

	if r.catalog.Known(key) {
		return Resolution{City: key, Raw: raw}, nil
	}
	if fixed, ok := r.catalog.Correction(key); ok {
		return Resolution{City: fixed, Raw: raw, Corrected: true}, nil
	}
	return Resolution{}, &UnrecognizedCityError{Raw: raw}
}

// maxNameWords bounds the phrase length Extract tries.
const maxNameWords = 3

// Extract finds a city mentioned in free text. The whole text is tried
// first, then every phrase of up to three words from left to right, longest
// first at each position. The returned Raw is the matching phrase.
func (r *Resolver) Extract(text string) (Resolution, error) {
	res, err := r.Resolve(text)
	if err == nil || errors.Is(err, ErrInvalidInput) {
		return res, err
	}

	words := strings.FieldsFunc(text, func(c rune) bool {
		return !unicode.IsLetter(c) && c != '-'
	})
	for i := range words {
		for n := min(maxNameWords, len(words)-i); n > 0; n-- {
			phrase := strings.Join(words[i:i+n], " ")
			if res, err := r.Resolve(phrase); err == nil {
				return res, nil
			}
		}
	}
	return Resolution{}, &UnrecognizedCityError{Raw: strings.TrimSpace(text)}
}
