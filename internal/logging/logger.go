package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger.
// In production it uses JSON output for log aggregation, otherwise the text formatter.
// level overrides the default (info in production, debug elsewhere).
func Init(environment, level string) {
	log.SetOutput(os.Stdout)

	if strings.EqualFold(environment, "production") {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		log.SetLevel(log.DebugLevel)
	}

	if level != "" {
		if parsed, err := log.ParseLevel(level); err == nil {
			log.SetLevel(parsed)
		} else {
			log.WithField("level", level).Warn("Unknown LOG_LEVEL, keeping default")
		}
	}
}

// WithRequest returns a logger with request context fields attached.
// Use this for all logging within one chat request.
func WithRequest(requestID, provider string) *log.Entry {
	return log.WithFields(log.Fields{
		"request_id": requestID,
		"provider":   provider,
	})
}
