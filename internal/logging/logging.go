package logging

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"io"
	"strings"
)

// Configure sets the level and format of the standard logrus logger.
// format is either "text" or "json".
func Configure(level, format string, w io.Writer) error {
	parsedLevel, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed parsing log level: %w", err)
	}

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format \"%s\"", format)
	}

	log.SetLevel(parsedLevel)
	log.SetOutput(w)
	return nil
}
