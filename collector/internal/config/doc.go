// Package config loads the collector's section of config.yaml.
//
// Credentials are never stored in the file: the config carries the names
// of environment variables (email_env, token_env) and resolves them at
// use time, so a .env file or the scheduler's secret store can supply the
// credential pair out-of-band.
//
// Watch provides fsnotify-based hot-reload notification for daemon mode.
package config
