package bmos

import (
	"fmt"
	"io"
	"sync"

	"github.com/gammazero/deque"
)

// LogLevel mirrors the LOG_D/LOG_I/LOG_W/LOG_E levels in
// _examples/original_source/rtos/util/logging/logging.h. Peripheral log
// transports (SWO, semihost, UART framing) are out of scope per spec.md's
// non-goals, but the leveled-logging concern itself is carried through as
// ambient infrastructure every component here uses for diagnostics.
type LogLevel uint8

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "D"
	case LogInfo:
		return "I"
	case LogWarn:
		return "W"
	case LogError:
		return "E"
	default:
		return "?"
	}
}

// LogEntry is one buffered diagnostic line.
type LogEntry struct {
	Level   LogLevel
	Message string
}

// LogBuffer is the console log buffer spec.md §4.7 has the idle task
// flush. Backed by github.com/gammazero/deque, grounded on
// _examples/other_examples/webriots-corio__sema.go's use of the same
// library as a FIFO in a task-scheduling context, and supplemented from
// _examples/original_source/rtos/config.h's SYSLOG_BUFSIZE comment ("log
// to the buffer, and periodically flush it to the output").
type LogBuffer struct {
	mu       sync.Mutex
	entries  deque.Deque[LogEntry]
	capacity int
}

// NewLogBuffer returns a LogBuffer that drops the oldest entry once more
// than capacity entries are buffered. capacity <= 0 means unbounded.
func NewLogBuffer(capacity int) *LogBuffer {
	return &LogBuffer{capacity: capacity}
}

// Append adds a log line, evicting the oldest entry if over capacity.
func (b *LogBuffer) Append(level LogLevel, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries.PushBack(LogEntry{Level: level, Message: message})
	for b.capacity > 0 && b.entries.Len() > b.capacity {
		b.entries.PopFront()
	}
}

// Flush drains all buffered entries to w in FIFO order.
func (b *LogBuffer) Flush(w io.Writer) {
	b.mu.Lock()
	drained := make([]LogEntry, 0, b.entries.Len())
	for b.entries.Len() > 0 {
		drained = append(drained, b.entries.PopFront())
	}
	b.mu.Unlock()

	for _, e := range drained {
		fmt.Fprintf(w, "[%s] %s\n", e.Level, e.Message)
	}
}
