// Package stream decodes the backend's line-oriented analysis event protocol.
//
// The analysis endpoint answers an upload with a single chunked response whose
// body is a sequence of event turns:
//
//	event: <name>
//	data: <JSON payload>
//	<blank line>
//
// Chunk boundaries are arbitrary and unrelated to line boundaries, so the
// decoder buffers the unterminated tail of each chunk and only processes fully
// terminated lines.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// Event is one decoded server push. Kind is the protocol's event name as
// transmitted; it is not constrained to a closed set here.
type Event struct {
	Kind string
	Data json.RawMessage
}

// Decoder converts an unbounded chunked text stream into an ordered sequence
// of Events. It is owned by exactly one decode session and is not safe for
// concurrent use.
type Decoder struct {
	buf   string // unconsumed tail, not yet a complete line
	event string // current turn's event name, empty between turns
	log   *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used to report dropped payloads.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) { d.log = l }
}

// NewDecoder returns a Decoder in its initial state (no buffered tail, no
// current turn).
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{log: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends one transport chunk and returns every event completed by it.
// Events are never split across calls: an event is returned by exactly the
// Feed call that supplies its terminating newline.
//
// Malformed data payloads are logged and dropped; they never abort the stream.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf += string(chunk)

	lines := strings.Split(d.buf, "\n")
	// The final split segment may be a line the transport cut mid-way.
	// Keep it buffered until a later chunk terminates it.
	d.buf = lines[len(lines)-1]

	var events []Event
	for _, line := range lines[:len(lines)-1] {
		line = strings.TrimSuffix(line, "\r")

		switch {
		case strings.HasPrefix(line, eventPrefix):
			d.event = strings.TrimSpace(line[len(eventPrefix):])

		case strings.HasPrefix(line, dataPrefix):
			payload := strings.TrimSpace(line[len(dataPrefix):])
			var probe any
			if err := json.Unmarshal([]byte(payload), &probe); err != nil {
				// Best effort: the payload source is trusted but not
				// contractually malformed-free.
				d.log.Warn("dropping malformed event payload",
					"event", d.event, "err", err)
				continue
			}
			events = append(events, Event{Kind: d.event, Data: json.RawMessage(payload)})

		case strings.TrimSpace(line) == "":
			// End of turn.
			d.event = ""
		}
		// Anything else is ignored.
	}
	return events
}

// Run reads transport chunks from r until end-of-stream, calling fn for every
// decoded event. A non-nil error from fn stops the read and is returned.
//
// Content still buffered when the stream ends is discarded: a server that
// closes the connection after an unterminated final line loses that line.
func (d *Decoder) Run(ctx context.Context, r io.Reader, fn func(Event) error) error {
	chunk := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			for _, ev := range d.Feed(chunk[:n]) {
				if ferr := fn(ev); ferr != nil {
					return ferr
				}
			}
		}
		if err == io.EOF {
			if d.buf != "" {
				d.log.Debug("discarding unterminated stream tail", "bytes", len(d.buf))
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream: read: %w", err)
		}
	}
}

// Encode writes one protocol turn for the given event name and payload.
func Encode(w io.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("stream: marshal payload: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
