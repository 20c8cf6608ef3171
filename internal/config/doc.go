// Package config provides configuration structures and utilities for
// techspider. It defines the crawl options, their defaults and validation,
// and the optional YAML config file with per-site overrides.
package config
