// Package protocol gives the raw stream events typed shapes, one variant per
// event kind. Every payload field is optional on the wire; absence decodes to
// the zero value and is handled by the consumer, never by failing the decode.
package protocol

import (
	"encoding/json"

	"github.com/cinelens/cinelens/internal/stream"
)

// Recognized event names. The protocol does not promise a closed set; names
// outside this list decode to Unknown.
const (
	KindInfo      = "info"
	KindVideoInfo = "video_info" // alias for info used by older backends
	KindProgress  = "progress"
	KindFrame     = "frame"
	KindComplete  = "complete"
	KindError     = "error"
)

// Event is one decoded, typed server push.
type Event interface {
	isEvent()
}

// VideoInfo carries the clip's read-only metadata, sent once at stream start.
type VideoInfo struct {
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// Progress reports overall pipeline progress with a free-text status message.
type Progress struct {
	Percent float64 `json:"progress"`
	Message string  `json:"message"`
}

// Frame is one analyzed frame. The four analysis fields are independently
// optional; an empty string means the backend sent nothing for that dimension.
type Frame struct {
	Number         int     `json:"frame_number"`
	Timestamp      float64 `json:"timestamp"`
	Image          string  `json:"image"` // base64 JPEG preview, may be empty
	FacesDetected  *int    `json:"faces_detected"`
	ShotType       string  `json:"shot_type"`
	Lighting       string  `json:"lighting"`
	CameraMovement string  `json:"camera_movement"`
	Emotion        string  `json:"dominant_emotion"`
}

// Complete carries the final aggregated report object. It stays loosely typed
// here; internal/report owns the defensive conversion.
type Complete struct {
	Raw map[string]any
}

// ErrorEvent is a server-side failure notice.
type ErrorEvent struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

// Text returns the server-provided message or a generic fallback.
func (e ErrorEvent) Text() string {
	if e.Err != "" {
		return e.Err
	}
	if e.Message != "" {
		return e.Message
	}
	return "analysis failed"
}

// Unknown preserves events with unrecognized names or unexpected shapes.
type Unknown struct {
	Kind string
	Data json.RawMessage
}

func (VideoInfo) isEvent()  {}
func (Progress) isEvent()   {}
func (Frame) isEvent()      {}
func (Complete) isEvent()   {}
func (ErrorEvent) isEvent() {}
func (Unknown) isEvent()    {}

// Parse maps a raw stream event onto its typed variant. Payloads whose shape
// does not match the expected variant come back as Unknown rather than an
// error; the stream already guarantees the data is valid JSON.
func Parse(ev stream.Event) Event {
	switch ev.Kind {
	case KindInfo, KindVideoInfo:
		var v VideoInfo
		if json.Unmarshal(ev.Data, &v) != nil {
			return Unknown{Kind: ev.Kind, Data: ev.Data}
		}
		return v
	case KindProgress:
		var v Progress
		if json.Unmarshal(ev.Data, &v) != nil {
			return Unknown{Kind: ev.Kind, Data: ev.Data}
		}
		return v
	case KindFrame:
		var v Frame
		if json.Unmarshal(ev.Data, &v) != nil {
			return Unknown{Kind: ev.Kind, Data: ev.Data}
		}
		return v
	case KindComplete:
		var raw map[string]any
		if json.Unmarshal(ev.Data, &raw) != nil {
			return Unknown{Kind: ev.Kind, Data: ev.Data}
		}
		return Complete{Raw: raw}
	case KindError:
		var v ErrorEvent
		if json.Unmarshal(ev.Data, &v) != nil {
			return Unknown{Kind: ev.Kind, Data: ev.Data}
		}
		return v
	default:
		return Unknown{Kind: ev.Kind, Data: ev.Data}
	}
}
