// Package logsvc is the kernel's own logging convention: a log line is
// sent through a shared message buffer to a sink task, the same way any
// other task talks to any other service. There is no logging library
// in this stack; logging is just another kernel client.
package logsvc

import (
	"fmt"
	"io"

	"statekernel/kernel"
	"statekernel/messagebuffer"
)

// MaxLineBytes bounds a single log line; a longer line is truncated
// before it is sent.
const MaxLineBytes = 256

// Client sends lines to a Sink through buf.
type Client struct {
	buf *messagebuffer.Buffer
}

// NewClient wraps buf as a logging client. Several clients may share one
// buf; each call is independently best-effort.
func NewClient(buf *messagebuffer.Buffer) *Client {
	return &Client{buf: buf}
}

// Log sends line to the sink without blocking. On a congested sink the
// line is dropped, reported as Full, rather than stalling the caller.
func (c *Client) Log(t *kernel.Task, line string) kernel.Result {
	b := []byte(line)
	if len(b) > MaxLineBytes {
		b = b[:MaxLineBytes]
	}
	return c.buf.TrySend(t, b)
}

// Logf formats and sends a line, otherwise identical to Log.
func (c *Client) Logf(t *kernel.Task, format string, args ...interface{}) kernel.Result {
	return c.Log(t, fmt.Sprintf(format, args...))
}

// Sink returns a task body that drains buf and writes each line to w,
// one per call to w.Write, until the buffer is killed.
func Sink(buf *messagebuffer.Buffer, w io.Writer) func(*kernel.Task) {
	return func(t *kernel.Task) {
		for {
			msg, res := buf.Receive(t)
			if res != kernel.Success {
				return
			}
			fmt.Fprintln(w, string(msg))
		}
	}
}
