// Package env provides typed accessors over process environment variables,
// matching the call surface the gateway's configuration layer expects
// (String/Int/Bool/Duration with a default fallback).
package env

import (
	"os"
	"strconv"
	"time"
)

// String returns the value of the named env var as set (untrimmed), or
// def if unset.
func String(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

// Int returns the named env var parsed as an int, or def if unset/invalid.
func Int(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool returns the named env var parsed as a bool, or def if unset/invalid.
func Bool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Duration returns the named env var parsed via time.ParseDuration, or def.
func Duration(name string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
