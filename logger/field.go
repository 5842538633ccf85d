package logger

import (
	"time"

	"github.com/philipp01105/nloghtml/core"
)

// Field helpers re-exported from core so callers only import logger.

// String creates a string field
func String(key, val string) core.Field { return core.String(key, val) }

// Int creates an int field
func Int(key string, val int) core.Field { return core.Int(key, val) }

// Int64 creates an int64 field
func Int64(key string, val int64) core.Field { return core.Int64(key, val) }

// Uint64 creates a uint64 field
func Uint64(key string, val uint64) core.Field { return core.Uint64(key, val) }

// Float64 creates a float64 field
func Float64(key string, val float64) core.Field { return core.Float64(key, val) }

// Bool creates a bool field
func Bool(key string, val bool) core.Field { return core.Bool(key, val) }

// Time creates a time field
func Time(key string, val time.Time) core.Field { return core.Time(key, val) }

// Duration creates a duration field
func Duration(key string, val time.Duration) core.Field { return core.Duration(key, val) }

// Err creates an error field with key "error"
func Err(err error) core.Field { return core.NamedErr("error", err) }

// NamedErr creates an error field under key
func NamedErr(key string, err error) core.Field { return core.NamedErr(key, err) }

// Any creates a field with any value
func Any(key string, val any) core.Field { return core.Any(key, val) }
