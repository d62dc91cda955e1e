// Package config loads runtime configuration for the bookshelf client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. YAML when the name
//     ends in .yaml or .yml, JSON otherwise.
//  3. Environment variables prefixed with BOOKSHELF_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-d string   sqlite database path
//
// # File schema
//
// Durations are either strings like "500ms" or integer nanoseconds:
//
//	base_url: http://localhost:5000
//	request_timeout: 10s
//	search_debounce: 500ms
//	storage:
//	  driver: redis
//	  redis_addr: localhost:6379
package config
