package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelens/cinelens/internal/protocol"
)

func intp(v int) *int { return &v }

func TestMetadataSetOnce(t *testing.T) {
	s := New()
	s.Apply(protocol.VideoInfo{Duration: 10, FPS: 24, TotalFrames: 240})
	s.Apply(protocol.VideoInfo{Duration: 99, FPS: 60, TotalFrames: 999})

	assert.Equal(t, 10.0, s.Meta.Duration, "duplicate metadata must be ignored")
	assert.Equal(t, 240, s.Meta.TotalFrames)
	assert.Equal(t, StatusProcessing, s.Status())
}

func TestProgressStageMatching(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"Detecting faces in frame 10/240", "Detecting faces"},
		{"Running actor recognition", "Recognizing actors"},
		{"Computing color palette", "Analyzing color"},
		{"Aggregating final statistics", "Finalizing results"},
		// Unclassifiable free text falls back to the message itself.
		{"Reticulating splines", "Reticulating splines"},
	}
	for _, tt := range tests {
		s := New()
		s.Apply(protocol.Progress{Percent: 5, Message: tt.message})
		assert.Equal(t, tt.want, s.Stage, tt.message)
	}
}

func TestProgressKeepsPreviousStageOnEmptyMessage(t *testing.T) {
	s := New()
	s.Apply(protocol.Progress{Percent: 10, Message: "Detecting faces"})
	s.Apply(protocol.Progress{Percent: 12})
	assert.Equal(t, "Detecting faces", s.Stage)
	assert.Equal(t, 12.0, s.Percent)
}

func TestFrameOptionalFields(t *testing.T) {
	s := New()
	s.Apply(protocol.Frame{Number: 1, ShotType: "wide", FacesDetected: intp(2)})
	// Fields absent from the next frame keep their previous values.
	s.Apply(protocol.Frame{Number: 2, Emotion: "happy"})

	assert.Equal(t, 2, s.Frames)
	assert.Equal(t, 2, s.Faces)
	assert.Equal(t, "wide", s.Current.ShotType)
	assert.Equal(t, "happy", s.Current.Emotion)
	assert.Empty(t, s.Current.Lighting)
}

func TestThroughputAndETA(t *testing.T) {
	clock := time.Unix(1000, 0)
	s := New(WithClock(func() time.Time { return clock }))

	s.Apply(protocol.VideoInfo{TotalFrames: 100})
	clock = clock.Add(10 * time.Second)
	for i := 0; i < 20; i++ {
		s.Apply(protocol.Frame{Number: i})
	}

	// 20 frames over 10s.
	assert.InDelta(t, 2.0, s.Rate, 0.01)
	// 80 frames remain at 2 fps.
	assert.Equal(t, 40*time.Second, s.ETA)
}

func TestCompleteBuildsReportWithProxyRewrite(t *testing.T) {
	rewritten := 0
	s := New(WithRewriter(func(u string) string {
		if strings.Contains(u, "image.tmdb.org") {
			rewritten++
			return "/api/image-proxy?url=" + u
		}
		return u
	}))

	s.Apply(protocol.Complete{Raw: map[string]any{
		"title":       "Night Run",
		"frame_count": 240.0,
		"actors": []any{
			map[string]any{"name": "Ana Reyes", "photo_url": "https://image.tmdb.org/t/p/ana.jpg"},
		},
	}})

	require.NotNil(t, s.Report)
	assert.Equal(t, "Night Run", s.Report.Title)
	assert.Equal(t, StatusComplete, s.Status())
	assert.Equal(t, 100.0, s.Percent)
	assert.Equal(t, 1, rewritten)
}

func TestCompleteFallsBackToMetaTitle(t *testing.T) {
	s := New()
	s.Apply(protocol.VideoInfo{Title: "upload.mp4"})
	s.Apply(protocol.Complete{Raw: map[string]any{}})
	require.NotNil(t, s.Report)
	assert.Equal(t, "upload.mp4", s.Report.Title)
}

func TestErrorRevertsToIdle(t *testing.T) {
	s := New()
	s.Apply(protocol.Progress{Percent: 50, Message: "Detecting faces"})
	s.Apply(protocol.ErrorEvent{Err: "gpu on fire"})

	assert.Equal(t, StatusIdle, s.Status())
	assert.Equal(t, "gpu on fire", s.ErrMsg)
	assert.Nil(t, s.Report)
}

func TestReset(t *testing.T) {
	s := New()
	s.Apply(protocol.VideoInfo{TotalFrames: 100})
	s.Apply(protocol.Frame{Number: 1, FacesDetected: intp(3)})
	s.Apply(protocol.Complete{Raw: map[string]any{"title": "Clip"}})

	s.Reset()

	assert.Equal(t, StatusIdle, s.Status())
	assert.Zero(t, s.Frames)
	assert.Zero(t, s.Meta)
	assert.Nil(t, s.Report)

	// After a reset the metadata guard is re-armed.
	s.Apply(protocol.VideoInfo{TotalFrames: 50})
	assert.Equal(t, 50, s.Meta.TotalFrames)
}
