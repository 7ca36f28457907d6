// Package replay records reactor inputs to a trace file and replays them
// against a fresh reactor, producing a deterministic request stream. The
// format is JSON lines with monotonically increasing timestamps and is not
// a stable interface.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/glidewm/glide/internal/reactor"
)

const traceVersion = 1

type header struct {
	GlideTrace int `json:"glide_trace"`
}

type record struct {
	T    int64           `json:"t"`
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Recorder writes each reactor input as one line. It implements
// reactor.Recorder.
type Recorder struct {
	mu    sync.Mutex
	w     *bufio.Writer
	c     io.Closer
	base  time.Time
	first bool
}

// NewRecorder starts a trace at path, truncating any previous trace.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	data, err := json.Marshal(header{GlideTrace: traceVersion})
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write trace header: %w", err)
	}
	return &Recorder{w: w, c: f, first: true}, nil
}

// Record appends one event. Timestamps are stored relative to the first
// event so traces are location-independent.
func (r *Recorder) Record(now time.Time, ev reactor.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.first {
		r.base = now
		r.first = false
	}
	data, err := reactor.EncodeEvent(ev)
	if err != nil {
		return err
	}
	line, err := json.Marshal(record{
		T:    now.Sub(r.base).Nanoseconds(),
		Kind: reactor.EventKind(ev),
		Data: data,
	})
	if err != nil {
		return err
	}
	if _, err := r.w.Write(append(line, '\n')); err != nil {
		return err
	}
	return r.w.Flush()
}

// Close flushes and closes the trace file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Flush(); err != nil {
		r.c.Close()
		return err
	}
	return r.c.Close()
}

// TimedEvent is one decoded trace event with its replay time.
type TimedEvent struct {
	At    time.Time
	Event reactor.Event
}

// ReadTrace parses a trace file into timed events.
func ReadTrace(path string) ([]TimedEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty trace file")
	}
	var h header
	if err := json.Unmarshal(scanner.Bytes(), &h); err != nil || h.GlideTrace != traceVersion {
		return nil, fmt.Errorf("not a glide trace (version %d expected)", traceVersion)
	}

	base := time.Unix(0, 0)
	var out []TimedEvent
	lastT := int64(-1)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("bad trace line %d: %w", len(out)+2, err)
		}
		if rec.T < lastT {
			return nil, fmt.Errorf("trace timestamps regress at line %d", len(out)+2)
		}
		lastT = rec.T
		ev, err := reactor.DecodeEvent(rec.Kind, rec.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, TimedEvent{At: base.Add(time.Duration(rec.T)), Event: ev})
	}
	return out, scanner.Err()
}
