package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records raw keystroke traffic on the driver connection, one line
// per stroke, with optional file output.
type RawLogger interface {
	// Stroke logs one stroke in driver wire layout. recv=true means the
	// stroke arrived from the device; recv=false means it was forwarded or
	// transformed back to the driver.
	Stroke(recv bool, device int, data []byte)
}

// rawLogger implements RawLogger with thread-safe output.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

func (r *rawLogger) Stroke(recv bool, device int, data []byte) {
	if len(data) == 0 {
		return
	}
	if r.w == nil {
		return
	}

	dir := "SEND"
	if recv {
		dir = "RECV"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s kbd%d stroke: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		dir,
		device,
		hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
