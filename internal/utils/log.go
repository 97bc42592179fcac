package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/kairos-io/immuroot/internal/constants"
	"github.com/rs/zerolog"
)

// Log is the logger shared by every immuroot step
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetLogger sets up Log to write to the console and, when possible, to a file
// under constants.LogDir so it survives the switch to the real root.
func SetLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug || os.Getenv("IMMUROOT_DEBUG") != "" {
		level = zerolog.DebugLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	_ = os.MkdirAll(constants.LogDir, os.ModeDir|os.ModePerm)
	f, err := os.OpenFile(filepath.Join(constants.LogDir, "immuroot.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		out = zerolog.MultiLevelWriter(out, f)
	}

	Log = zerolog.New(out).With().Timestamp().Logger().Level(level)
}
