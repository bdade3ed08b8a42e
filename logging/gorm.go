// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logging

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormLogger struct {
	parent zerolog.Logger
}

// GormLogger adapts a zerolog logger to gorm's logger.Interface. SQL
// statements are emitted at trace level.
//
//nolint:gocritic // zerolog.Logger is passed by value
func GormLogger(l zerolog.Logger) logger.Interface {
	return &gormLogger{parent: l.With().Str("component", "gorm").Logger()}
}

func (g *gormLogger) LogMode(lvl logger.LogLevel) logger.Interface {
	var zl zerolog.Level
	switch lvl {
	case logger.Info:
		zl = zerolog.InfoLevel
	case logger.Warn:
		zl = zerolog.WarnLevel
	case logger.Error:
		zl = zerolog.ErrorLevel
	default:
		zl = zerolog.Disabled
	}
	return &gormLogger{parent: g.parent.Level(zl)}
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	g.parent.Info().Msgf(msg, args...)
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	g.parent.Warn().Msgf(msg, args...)
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	g.parent.Error().Msgf(msg, args...)
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	e := g.parent.Trace()
	// not-found is an expected outcome of existence checks
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		e = g.parent.Debug().Err(err)
	}
	e.Dur("elapsed", time.Since(begin)).Func(func(e *zerolog.Event) {
		sql, rows := fc()
		e.Str("sql", sql).Int64("rows_affected", rows)
	}).Msg("")
}
