package exec

import (
	"bytes"
	"sync"
)

// OutputCollector is an io.Writer that keeps the last maxBuf bytes of
// process output and counts every byte and line it has seen, including
// what the rolling buffer has since dropped.
//
// It is safe for concurrent use.
type OutputCollector struct {
	mu       sync.Mutex
	buf      []byte
	maxBuf   int
	total    int64
	newlines int
	lastByte byte
}

// NewOutputCollector creates a collector with a rolling buffer of maxBuf
// bytes.
func NewOutputCollector(maxBuf int) *OutputCollector {
	return &OutputCollector{maxBuf: maxBuf}
}

// Write implements io.Writer.
func (c *OutputCollector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}
	c.total += int64(len(p))
	c.newlines += bytes.Count(p, []byte{'\n'})
	c.lastByte = p[len(p)-1]

	c.buf = append(c.buf, p...)
	if over := len(c.buf) - c.maxBuf; over > 0 {
		// Copy so the dropped prefix can be collected.
		c.buf = append([]byte(nil), c.buf[over:]...)
	}
	return len(p), nil
}

// Bytes returns a copy of the rolling buffer.
func (c *OutputCollector) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.buf)
}

// TotalBytes returns the number of bytes written.
func (c *OutputCollector) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// TotalLines returns the number of lines written. An unterminated final
// line counts.
func (c *OutputCollector) TotalLines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total > 0 && c.lastByte != '\n' {
		return c.newlines + 1
	}
	return c.newlines
}

// Dropped reports whether the rolling buffer has discarded output.
func (c *OutputCollector) Dropped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total > int64(len(c.buf))
}
