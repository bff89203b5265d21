// Package env reads raw process environment values, for the few lookups that
// happen before configuration parsing has run.
package env

import "os"

const prefix = "LOYALTY_"

// Get returns the value of key, preferring its LOYALTY_-prefixed form, or the
// fallback when neither is set.
func Get(key, fallback string) string {
	if val := os.Getenv(prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
