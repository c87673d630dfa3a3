package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelens/cinelens/internal/stream"
)

func raw(kind, data string) stream.Event {
	return stream.Event{Kind: kind, Data: json.RawMessage(data)}
}

func TestParseVideoInfoAlias(t *testing.T) {
	for _, kind := range []string{"info", "video_info"} {
		ev := Parse(raw(kind, `{"duration":12.5,"fps":24,"total_frames":300}`))
		info, ok := ev.(VideoInfo)
		require.True(t, ok, "kind %q", kind)
		assert.Equal(t, 12.5, info.Duration)
		assert.Equal(t, 300, info.TotalFrames)
	}
}

func TestParseFrameMissingFields(t *testing.T) {
	// Any subset of frame fields may be absent.
	ev := Parse(raw("frame", `{"frame_number":9,"shot_type":"close-up"}`))
	frame, ok := ev.(Frame)
	require.True(t, ok)

	assert.Equal(t, 9, frame.Number)
	assert.Equal(t, "close-up", frame.ShotType)
	assert.Nil(t, frame.FacesDetected)
	assert.Empty(t, frame.Lighting)
	assert.Empty(t, frame.Emotion)
}

func TestParseErrorFallbackText(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{`{"error":"ffmpeg exploded"}`, "ffmpeg exploded"},
		{`{"message":"worker lost"}`, "worker lost"},
		{`{}`, "analysis failed"},
	}
	for _, tt := range tests {
		ev := Parse(raw("error", tt.data))
		errEv, ok := ev.(ErrorEvent)
		require.True(t, ok)
		assert.Equal(t, tt.want, errEv.Text())
	}
}

func TestParseUnknownKind(t *testing.T) {
	ev := Parse(raw("heartbeat", `{"ts":1}`))
	unk, ok := ev.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "heartbeat", unk.Kind)
}

func TestParseShapeMismatch(t *testing.T) {
	// A progress payload that is a bare number is valid JSON but not the
	// expected object shape; it must degrade to Unknown, not fail.
	ev := Parse(raw("progress", `42`))
	_, ok := ev.(Unknown)
	assert.True(t, ok)
}

func TestParseComplete(t *testing.T) {
	ev := Parse(raw("complete", `{"title":"Clip","frame_count":120}`))
	complete, ok := ev.(Complete)
	require.True(t, ok)
	assert.Equal(t, "Clip", complete.Raw["title"])
}
