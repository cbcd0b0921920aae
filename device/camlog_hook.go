package device

import (
	"log"
	"strings"

	"termplay/logs"

	_ "unsafe"
)

//go:linkname gocamLogger github.com/svanichkin/gocam.camLog
var gocamLogger *log.Logger

// The camera backend logs straight to stderr, which would scribble over the
// alternate screen. Route it through the verbose log gate instead.
func init() {
	if gocamLogger == nil {
		return
	}
	gocamLogger.SetOutput(gocamLogWriter{})
	gocamLogger.SetFlags(0)
	gocamLogger.SetPrefix("")
}

type gocamLogWriter struct{}

func (gocamLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg == "" {
		return len(p), nil
	}
	logs.LogV("%s", msg)
	return len(p), nil
}
