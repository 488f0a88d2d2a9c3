// Package logging wires zap for the whole application. Services take a
// *zap.SugaredLogger so tests can pass zap.NewNop().Sugar().
package logging

import (
	"go.uber.org/zap"
)

// New builds the process-wide logger. Development mode switches to the
// human-readable console encoder.
func New(development bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
