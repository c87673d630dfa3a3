// Package session reduces the decoded event sequence of one upload into
// observable analysis state. One Session serves exactly one upload; Reset
// returns it to idle for reuse.
package session

import (
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/cinelens/cinelens/internal/protocol"
	"github.com/cinelens/cinelens/internal/report"
)

// Status is the session's coarse lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
)

// VideoMeta is the clip's read-only metadata, populated at most once per
// session.
type VideoMeta struct {
	Title       string
	Duration    float64
	FPS         float64
	TotalFrames int
}

// CurrentAnalysis is the most recent per-frame classification, each field
// independently optional and retained until a later frame replaces it.
type CurrentAnalysis struct {
	ShotType       string
	Lighting       string
	CameraMovement string
	Emotion        string
}

// Session applies events in arrival order. No handler fails on a missing
// payload field, and all handlers except the metadata guard are safe to
// re-run.
type Session struct {
	log     *slog.Logger
	rewrite func(string) string
	stages  []Stage
	now     func() time.Time

	status  Status
	metaSet bool
	started time.Time

	Meta     VideoMeta
	Percent  float64
	Stage    string
	Current  CurrentAnalysis
	Frames   int           // processed-frame counter
	Faces    int           // total detected faces
	Rate     float64       // frames per second of processing throughput
	ETA      time.Duration // zero when unknown
	LastJPEG []byte        // latest frame preview, nil when none sent

	Report *report.AnalysisReport
	ErrMsg string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session's logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithRewriter sets the image-URL rewriter applied when the final report is
// constructed.
func WithRewriter(rewrite func(string) string) SessionOption {
	return func(s *Session) { s.rewrite = rewrite }
}

// WithStages replaces the default pipeline-stage matching table.
func WithStages(stages []Stage) SessionOption {
	return func(s *Session) { s.stages = stages }
}

// WithClock overrides the clock; throughput and ETA tests use this.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// New returns an idle Session.
func New(opts ...SessionOption) *Session {
	s := &Session{
		log:    slog.Default(),
		stages: DefaultStages,
		now:    time.Now,
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the session's lifecycle state.
func (s *Session) Status() Status { return s.status }

// Apply folds one typed event into the session state.
func (s *Session) Apply(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.VideoInfo:
		s.applyInfo(e)
	case protocol.Progress:
		s.applyProgress(e)
	case protocol.Frame:
		s.applyFrame(e)
	case protocol.Complete:
		s.Report = report.FromPayload(e.Raw, s.rewrite)
		if s.Report.Title == "" {
			s.Report.Title = s.Meta.Title
		}
		s.Percent = 100
		s.status = StatusComplete
	case protocol.ErrorEvent:
		s.ErrMsg = e.Text()
		s.status = StatusIdle
	case protocol.Unknown:
		s.log.Debug("ignoring event", "kind", e.Kind)
	}
}

// applyInfo records metadata exactly once; later duplicates must not
// re-trigger the one-time setup (e.g. restarting the throughput clock).
func (s *Session) applyInfo(e protocol.VideoInfo) {
	if s.metaSet {
		s.log.Debug("ignoring duplicate video metadata")
		return
	}
	s.metaSet = true
	s.Meta = VideoMeta{
		Title:       e.Title,
		Duration:    e.Duration,
		FPS:         e.FPS,
		TotalFrames: e.TotalFrames,
	}
	s.started = s.now()
	s.status = StatusProcessing
}

func (s *Session) applyProgress(e protocol.Progress) {
	s.status = StatusProcessing
	s.Percent = e.Percent
	if label := matchStage(s.stages, e.Message); label != "" {
		s.Stage = label
	} else if e.Message != "" {
		// Unclassifiable messages are still worth showing verbatim.
		s.Stage = e.Message
	}
}

func (s *Session) applyFrame(e protocol.Frame) {
	s.status = StatusProcessing
	s.Frames++
	if e.FacesDetected != nil {
		s.Faces += *e.FacesDetected
	}
	if e.ShotType != "" {
		s.Current.ShotType = e.ShotType
	}
	if e.Lighting != "" {
		s.Current.Lighting = e.Lighting
	}
	if e.CameraMovement != "" {
		s.Current.CameraMovement = e.CameraMovement
	}
	if e.Emotion != "" {
		s.Current.Emotion = e.Emotion
	}
	if e.Image != "" {
		if img, err := base64.StdEncoding.DecodeString(e.Image); err == nil {
			s.LastJPEG = img
		}
	}

	if s.started.IsZero() {
		s.started = s.now()
		return
	}
	elapsed := s.now().Sub(s.started).Seconds()
	if elapsed <= 0 {
		return
	}
	s.Rate = float64(s.Frames) / elapsed
	if remaining := s.Meta.TotalFrames - s.Frames; remaining > 0 && s.Rate > 0 {
		s.ETA = time.Duration(float64(remaining)/s.Rate*float64(time.Second)).Round(time.Second)
	} else {
		s.ETA = 0
	}
}

// Reset discards all observed state, including the final report, returning
// the session to idle.
func (s *Session) Reset() {
	*s = Session{
		log:     s.log,
		rewrite: s.rewrite,
		stages:  s.stages,
		now:     s.now,
		status:  StatusIdle,
	}
}
