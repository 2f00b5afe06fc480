// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dlog is the thin structured-logging seam every long-running
// DapolTree operation logs through, mirroring the log.Logger field pattern
// the teacher's MPC client carries (threshold/client.go) but backed
// directly by zap rather than an org-internal wrapper.
package dlog

import (
	"go.uber.org/zap"
)

// Logger is the narrow sugared-logging surface this module depends on.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Sync() error
}

type zapLogger struct{ s *zap.SugaredLogger }

func (l *zapLogger) Debugw(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Infow(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warnw(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Errorw(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l *zapLogger) Sync() error                          { return l.s.Sync() }

// NewProduction returns a JSON-encoded, Info-level-and-above logger
// suitable for production builds.
func NewProduction() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: z.Sugar()}, nil
}

// NewTest returns a development-mode logger (console-encoded, Debug level)
// suitable for tests and local runs; it never returns an error.
func NewTest() Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		// zap.NewDevelopment has no failure mode that isn't itself a bug.
		panic(err)
	}
	return &zapLogger{s: z.Sugar()}
}

// noop discards every log line; used as the zero-value default so callers
// who never configure a logger still get a non-nil one.
type noop struct{}

func (noop) Debugw(string, ...interface{}) {}
func (noop) Infow(string, ...interface{})  {}
func (noop) Warnw(string, ...interface{})  {}
func (noop) Errorw(string, ...interface{}) {}
func (noop) Sync() error                   { return nil }

// Noop returns a Logger that discards everything, the default for
// DapolTree configs that don't specify one.
func Noop() Logger { return noop{} }
