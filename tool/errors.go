package tool

import "fmt"

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ErrInvalidArguments wraps a failure to decode a call's JSON arguments.
type ErrInvalidArguments struct {
	Name string
	Err  error
}

func (e *ErrInvalidArguments) Error() string {
	return fmt.Sprintf("tool: %s: invalid arguments: %v", e.Name, e.Err)
}

func (e *ErrInvalidArguments) Unwrap() error {
	return e.Err
}

// ResultError is returned by a handler whose failure has a structured
// payload for the model. Execute sends Content verbatim with IsError set.
type ResultError struct {
	Content string
	Err     error
}

func (e *ResultError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Content
}

func (e *ResultError) Unwrap() error {
	return e.Err
}
