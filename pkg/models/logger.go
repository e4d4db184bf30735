package models

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration after which a query is logged as a warning.
const slowQueryThreshold = 200 * time.Millisecond

// logger writes gorm output to zerolog.
//
// Failed queries are logged as errors, slow ones as warnings and all others
// at debug level. Lookups that find no record are not failures.
type logger struct {
	Logger        zerolog.Logger
	Level         gorm_logger.LogLevel
	SlowThreshold time.Duration
}

func newLogger(l zerolog.Logger) *logger {
	return &logger{
		Logger:        l,
		Level:         gorm_logger.Info,
		SlowThreshold: slowQueryThreshold,
	}
}

func (l *logger) LogMode(level gorm_logger.LogLevel) gorm_logger.Interface {
	c := *l
	c.Level = level
	return &c
}

func (l *logger) Info(_ context.Context, s string, args ...interface{}) {
	if l.Level >= gorm_logger.Info {
		l.Logger.Info().Msgf(s, args...)
	}
}

func (l *logger) Warn(_ context.Context, s string, args ...interface{}) {
	if l.Level >= gorm_logger.Warn {
		l.Logger.Warn().Msgf(s, args...)
	}
}

func (l *logger) Error(_ context.Context, s string, args ...interface{}) {
	if l.Level >= gorm_logger.Error {
		l.Logger.Error().Msgf(s, args...)
	}
}

func (l *logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, ErrResourceNotFound)
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold

	var event *zerolog.Event
	switch {
	case failed && l.Level >= gorm_logger.Error:
		event = l.Logger.Error().Err(err)
	case slow && l.Level >= gorm_logger.Warn:
		event = l.Logger.Warn().Dur("threshold", l.SlowThreshold)
	case l.Level >= gorm_logger.Info:
		event = l.Logger.Debug()
	default:
		return
	}

	sql, rows := fc()
	event.Str("sql", sql).Int64("rows", rows).Dur("duration", elapsed).Msg("[GORM] query")
}
