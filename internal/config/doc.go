// Package config loads and validates strata.json project configuration.
package config
