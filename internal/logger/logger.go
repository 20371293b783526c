// Package logger configures the process-wide logrus logger.  Every other
// package logs through Log (or an Entry derived from it) so that level and
// format are controlled in one place.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the shared logger.  It is usable before Init is called and
// defaults to text output at info level.
var Log = logrus.New()

// Init sets the level and formatter.  Production environments log JSON so
// lines can be shipped as-is; everything else gets the text formatter.
func Init(env, level string) {
	Log.SetOutput(os.Stdout)
	if strings.EqualFold(env, "prod") || strings.EqualFold(env, "production") {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}

// Module returns an entry tagged with the module name, e.g. "booking".
func Module(name string) *logrus.Entry {
	return Log.WithField("module", name)
}

// RotatingFile returns a size-rotated writer for append-only audit files.
func RotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}
