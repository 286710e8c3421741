package debug

import (
	"os"

	"github.com/kayz/cue/internal/logger"
)

// enabled is set via ldflags for debug builds
var enabled = ""

// Enabled controls whether request dumps are printed
var Enabled = false

func init() {
	if enabled == "true" {
		Enabled = true
	}
	// CUE_DEBUG overrides ldflags
	if os.Getenv("CUE_DEBUG") == "1" {
		Enabled = true
	}
}

// Log prints a request dump at info level when debug mode is enabled.
func Log(format string, args ...any) {
	if Enabled {
		logger.Info("[DEBUG] "+format, args...)
	}
}
