package dcm2niix

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// logConverterOutput forwards converter stdout to the logger line by line,
// classifying the kinds dcm2niix is known to emit: warnings keep their
// level but lose the prefix, the version banner is demoted to debug, and
// everything else (including the conversion summary) is informational.
func logConverterOutput(stdout string) {
	for _, line := range strings.Split(stdout, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "Warning: "):
			log.Warn(strings.TrimPrefix(line, "Warning: "))
		case strings.HasPrefix(line, "Chris Rorden"):
			log.Debug(line)
		default:
			log.Info(line)
		}
	}
}
