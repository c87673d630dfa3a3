package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPayload(t *testing.T) {
	payload := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Night Run",
		"duration": 95.5,
		"frame_count": 2400,
		"poster_url": "https://image.tmdb.org/t/p/w500/poster.jpg",
		"actors": [
			{"id": 7, "name": "Ana Reyes", "character": "The Driver",
			 "photo_url": "https://image.tmdb.org/t/p/w185/ana.jpg",
			 "detections": 311, "similarity": 0.91}
		],
		"shot_types": {"wide": 40.0, "close-up": 60.0},
		"composition_score": 71.5,
		"palette": [
			{"hex": "#102030", "rgb": [16, 32, 48], "name": "midnight", "percentage": 44.0}
		],
		"rgb_series": [{"r": 10.0, "g": 20.0, "b": 30.0}],
		"movement_timeline": ["static", "pan"],
		"composition_series": [50.0, 60.0]
	}`), &payload))

	rewrite := func(u string) string {
		if strings.Contains(u, "image.tmdb.org") {
			return "/api/image-proxy?url=" + u
		}
		return u
	}

	r := FromPayload(payload, rewrite)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Night Run", r.Title)
	assert.Equal(t, 95.5, r.Duration)
	assert.Equal(t, 2400, r.FrameCount)
	assert.True(t, strings.HasPrefix(r.PosterURL, "/api/image-proxy?url="))

	require.Len(t, r.Actors, 1)
	assert.Equal(t, "Ana Reyes", r.Actors[0].Name)
	assert.True(t, strings.HasPrefix(r.Actors[0].PhotoURL, "/api/image-proxy?url="),
		"actor photo must route through the proxy")
	assert.Equal(t, 311, r.Actors[0].Detections)

	assert.Equal(t, Summary{"wide": 40, "close-up": 60}, r.ShotTypes)
	assert.Nil(t, r.Emotions, "absent summaries stay nil")
	assert.Nil(t, r.Lighting)

	require.NotNil(t, r.CompositionScore)
	assert.Equal(t, 71.5, *r.CompositionScore)

	require.Len(t, r.Palette, 1)
	assert.Equal(t, "#102030", r.Palette[0].Hex)
	assert.Equal(t, 44.0, r.Palette[0].Percent, "legacy 'percentage' field is honored")

	require.Len(t, r.RGBSeries, 1)
	assert.Equal(t, 30.0, r.RGBSeries[0].B)
	assert.Equal(t, []string{"static", "pan"}, r.MovementTimeline)
	assert.Equal(t, []float64{50, 60}, r.CompositionSeries)
}

func TestFromPayloadEmpty(t *testing.T) {
	// A hostile or minimal payload must never fail conversion.
	r := FromPayload(map[string]any{"actors": "not-a-list", "shot_types": 3.0}, nil)
	assert.Empty(t, r.Title)
	assert.Nil(t, r.Actors)
	assert.Nil(t, r.ShotTypes)
}

func TestPaletteEntryValid(t *testing.T) {
	tests := []struct {
		name  string
		entry PaletteEntry
		want  bool
	}{
		{"ok", PaletteEntry{Hex: "#FF8000", RGB: [3]int{255, 128, 0}}, true},
		{"lowercase hex ok", PaletteEntry{Hex: "#ff8000", RGB: [3]int{255, 128, 0}}, true},
		{"hex rgb mismatch", PaletteEntry{Hex: "#FF8000", RGB: [3]int{255, 128, 1}}, false},
		{"channel out of range", PaletteEntry{Hex: "#FF8000", RGB: [3]int{256, 128, 0}}, false},
		{"short hex", PaletteEntry{Hex: "#F80", RGB: [3]int{255, 136, 0}}, false},
		{"no hash", PaletteEntry{Hex: "FF8000!", RGB: [3]int{255, 128, 0}}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.entry.Valid(), tt.name)
	}
}

func TestValidPaletteFilters(t *testing.T) {
	entries := []PaletteEntry{
		{Hex: "#000000", RGB: [3]int{0, 0, 0}},
		{Hex: "oops", RGB: [3]int{0, 0, 0}},
	}
	got := ValidPalette(entries)
	require.Len(t, got, 1)
	assert.Equal(t, "#000000", got[0].Hex)
}

func TestReportJSONRoundTrip(t *testing.T) {
	// The analyze command persists the report as JSON for later assembly.
	score := 80.0
	orig := &AnalysisReport{
		ID: "abc", Title: "Clip", Duration: 10, FrameCount: 240,
		ShotTypes:        Summary{"wide": 100},
		CompositionScore: &score,
		RGBSeries:        []RGBPoint{{Frame: 0, R: 1, G: 2, B: 3}},
		MovementTimeline: []string{"pan"},
	}
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var got AnalysisReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *orig, got)
}
