package lookup

import (
	"errors"
	"fmt"

	ai "github.com/spetersoncode/citydesk"
)

// Kind names the catalog table a lookup consulted.
type Kind string

const (
	KindWeather  Kind = "weather"
	KindTimezone Kind = "timezone"
)

// ErrNotFound matches any *NotFoundError via errors.Is.
var ErrNotFound = errors.New("lookup: not found")

// ErrInvalidUnit is returned for a temperature unit other than celsius or
// fahrenheit.
var ErrInvalidUnit = &UnitError{}

// NotFoundError reports a city missing from the consulted table.
type NotFoundError struct {
	Kind Kind
	City string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lookup: no %s entry for %q", e.Kind, e.City)
}

func (e *NotFoundError) UserMessage() string {
	if e.Kind == KindTimezone {
		return fmt.Sprintf("Sorry, I don't have timezone information for %s.", e.City)
	}
	return fmt.Sprintf("Weather information for '%s' is not available.", e.City)
}

func (e *NotFoundError) Category() ai.ErrorCategory { return ai.ErrorUserInput }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnitError reports an unsupported temperature unit.
type UnitError struct {
	Unit string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("lookup: invalid temperature unit %q", e.Unit)
}

func (e *UnitError) UserMessage() string {
	return "Invalid temperature unit. Please choose 'celsius' or 'fahrenheit'."
}

func (e *UnitError) Category() ai.ErrorCategory { return ai.ErrorUserInput }

func (e *UnitError) Is(target error) bool {
	_, ok := target.(*UnitError)
	return ok
}
