package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// formatUptime returns a human-readable string for a duration.
func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

// plural returns "s" if n != 1, otherwise "".
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// envName maps the production flag to a display name.
func envName(production bool) string {
	if production {
		return "production"
	}
	return "development"
}

// setupLogging configures the standard logrus logger.
func setupLogging(level log.Level, production bool) {
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	if production {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
}

// logInfo logs an info-level message.
func logInfo(format string, v ...any) {
	log.Infof(format, v...)
}

// logWarn logs a warning-level message.
func logWarn(format string, v ...any) {
	log.Warnf(format, v...)
}

// logFatal logs a fatal error and exits.
func logFatal(format string, v ...any) {
	log.Fatalf(format, v...)
}
