// Package logger provides structured logging on top of zerolog.
//
// Loggers are created from a Config (level, format, output) and tagged per
// component:
//
//	log := logger.New(&cfg, "meetingmind").WithComponent("analysis")
//	log.Info("analysis complete", logger.Fields("attempts", 2))
package logger
