// Package config loads medstore configuration.
//
// Configuration comes from an optional YAML file, then environment
// overrides, and is checked with struct-tag validation before use:
//
//	database:
//	  path: medications.db
//	  busy_timeout: 5s
//	telemetry:
//	  log_level: info
//	  log_format: console
//	  trace_exporter: none
//
// Recognised environment variables: MEDSTORE_DB_PATH, LOG_LEVEL,
// MEDSTORE_TRACE_EXPORTER, MEDSTORE_TRACE_ENDPOINT, MEDSTORE_METRICS_LISTEN.
package config
