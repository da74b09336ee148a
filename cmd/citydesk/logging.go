package main

import (
	"fmt"

	"go.uber.org/zap"
)

// newLogger builds a JSON production logger writing to stderr at level.
func newLogger(level string) (*zap.Logger, error) {
	atom, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = atom
	zc.Sampling = nil
	return zc.Build()
}
