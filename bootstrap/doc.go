// Package bootstrap runs an application's components with a uniform
// lifecycle: typed config validation, logger setup, ordered start, hooks,
// a startup summary, signal handling and graceful shutdown.
//
// Long-running hosts use Run; one-shot CLI commands use RunTask.
package bootstrap
