package source

import (
	"fmt"
	"runtime"
	"strings"
)

const maxFrames = 32

// captureStack renders the calling goroutine's frames, skipping the first
// skip frames as runtime.Callers counts them. The first line is the error
// header, the rest are "    at fn (file:line)".
func captureStack(name, message string, skip int) string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(name + ": " + message)

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&b, "\n    at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}
