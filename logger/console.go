package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const ansiReset = "\033[0m"

var levelColors = map[string]string{
	"DBG": "\033[36m",
	"INF": "\033[32m",
	"WRN": "\033[33m",
	"ERR": "\033[31m",
	"FTL": "\033[35m",
}

var levelAbbrev = map[string]string{
	"DEBUG": "DBG", "INFO": "INF", "WARN": "WRN", "ERROR": "ERR", "FATAL": "FTL",
}

// consoleWriter renders "[SVC][INF] message key:value" lines, with the
// first three letters of service as the prefix.
func consoleWriter(w io.Writer, noColor bool, service string) zerolog.ConsoleWriter {
	paint := func(color, s string) string {
		if noColor || color == "" {
			return s
		}
		return color + s + ansiReset
	}
	prefix := ""
	if len(service) >= 3 {
		prefix = paint("\033[34m", "["+strings.ToUpper(service[:3])+"]")
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
		FormatLevel: func(i any) string {
			lvl := strings.ToUpper(fmt.Sprint(i))
			if short, ok := levelAbbrev[lvl]; ok {
				lvl = short
			}
			return prefix + paint(levelColors[lvl], "["+lvl+"]")
		},
		FormatFieldName: func(i any) string { return fmt.Sprint(i) + ":" },
		FormatFieldValue: func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
	}
}
