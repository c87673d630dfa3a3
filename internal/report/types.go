// Package report owns the final analysis aggregate and its PDF rendering.
package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Actor is one recognized cast member.
type Actor struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Character  string  `json:"character"`
	PhotoURL   string  `json:"photo_url"`
	Detections int     `json:"detections"`
	Similarity float64 `json:"similarity"`
}

// Summary is one analysis dimension's name-to-percentage distribution.
type Summary map[string]float64

// PaletteEntry is one dominant color. Hex must be a 7-character #RRGGBB string
// consistent with RGB.
type PaletteEntry struct {
	Hex     string  `json:"hex"`
	RGB     [3]int  `json:"rgb"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Valid re-checks the invariants the backend promises but does not enforce:
// a well-formed hex string matching three in-range RGB channels.
func (p PaletteEntry) Valid() bool {
	for _, c := range p.RGB {
		if c < 0 || c > 255 {
			return false
		}
	}
	if len(p.Hex) != 7 || p.Hex[0] != '#' {
		return false
	}
	return strings.EqualFold(p.Hex, fmt.Sprintf("#%02X%02X%02X", p.RGB[0], p.RGB[1], p.RGB[2]))
}

// RGBPoint is one frame's mean channel intensities.
type RGBPoint struct {
	Frame int     `json:"frame"`
	R     float64 `json:"r"`
	G     float64 `json:"g"`
	B     float64 `json:"b"`
}

// AnalysisReport is the terminal aggregate built from a complete event.
// Immutable once constructed; a new analysis replaces it wholesale.
//
// Every summary field is nil when the backend sent nothing for that
// dimension. Renderers must treat nil as "no data", not as an error.
type AnalysisReport struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	FrameCount int     `json:"frame_count"`
	PosterURL  string  `json:"poster_url,omitempty"`

	Actors []Actor `json:"actors,omitempty"`

	ShotTypes      Summary        `json:"shot_types,omitempty"`
	Lighting       Summary        `json:"lighting,omitempty"`
	Emotions       Summary        `json:"emotions,omitempty"`
	Palette        []PaletteEntry `json:"palette,omitempty"`
	CameraMovement Summary        `json:"camera_movement,omitempty"`
	Composition    Summary        `json:"composition,omitempty"`

	CompositionScore *float64 `json:"composition_score,omitempty"`

	// Raw per-frame series, used only for chart rendering.
	RGBSeries         []RGBPoint `json:"rgb_series,omitempty"`
	MovementTimeline  []string   `json:"movement_timeline,omitempty"`
	CompositionSeries []float64  `json:"composition_series,omitempty"`
}

// FromPayload converts a complete event's loose payload into an
// AnalysisReport. Absent fields stay at their zero value; no shape mismatch
// is fatal. rewrite, when non-nil, is applied to every third-party image URL
// (actor photos, poster) so they route through the backend image proxy.
func FromPayload(data map[string]any, rewrite func(string) string) *AnalysisReport {
	if rewrite == nil {
		rewrite = func(u string) string { return u }
	}

	r := &AnalysisReport{ID: uuid.NewString()}
	r.Title = str(data, "title")
	r.Duration = num(data, "duration")
	r.FrameCount = int(num(data, "frame_count"))
	r.PosterURL = rewrite(str(data, "poster_url"))

	if actors, ok := data["actors"].([]any); ok {
		for _, a := range actors {
			am, ok := a.(map[string]any)
			if !ok {
				continue
			}
			r.Actors = append(r.Actors, Actor{
				ID:         int(num(am, "id")),
				Name:       str(am, "name"),
				Character:  str(am, "character"),
				PhotoURL:   rewrite(str(am, "photo_url")),
				Detections: int(num(am, "detections")),
				Similarity: num(am, "similarity"),
			})
		}
	}

	r.ShotTypes = summary(data, "shot_types")
	r.Lighting = summary(data, "lighting")
	r.Emotions = summary(data, "emotions")
	r.CameraMovement = summary(data, "camera_movement")
	r.Composition = summary(data, "composition")

	if v, ok := data["composition_score"].(float64); ok {
		r.CompositionScore = &v
	}

	if entries, ok := data["palette"].([]any); ok {
		for _, e := range entries {
			em, ok := e.(map[string]any)
			if !ok {
				continue
			}
			entry := PaletteEntry{
				Hex:     str(em, "hex"),
				Name:    str(em, "name"),
				Percent: share(em),
			}
			if rgb, ok := em["rgb"].([]any); ok && len(rgb) == 3 {
				for i, c := range rgb {
					if f, ok := c.(float64); ok {
						entry.RGB[i] = int(f)
					}
				}
			}
			r.Palette = append(r.Palette, entry)
		}
	}

	if series, ok := data["rgb_series"].([]any); ok {
		for i, p := range series {
			pm, ok := p.(map[string]any)
			if !ok {
				continue
			}
			r.RGBSeries = append(r.RGBSeries, RGBPoint{
				Frame: i,
				R:     num(pm, "r"),
				G:     num(pm, "g"),
				B:     num(pm, "b"),
			})
		}
	}
	if timeline, ok := data["movement_timeline"].([]any); ok {
		for _, m := range timeline {
			if s, ok := m.(string); ok {
				r.MovementTimeline = append(r.MovementTimeline, s)
			}
		}
	}
	if scores, ok := data["composition_series"].([]any); ok {
		for _, s := range scores {
			if f, ok := s.(float64); ok {
				r.CompositionSeries = append(r.CompositionSeries, f)
			}
		}
	}

	return r
}

// ValidPalette filters out entries that fail render-time validation.
func ValidPalette(entries []PaletteEntry) []PaletteEntry {
	var out []PaletteEntry
	for _, e := range entries {
		if e.Valid() {
			out = append(out, e)
		}
	}
	return out
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func num(m map[string]any, key string) float64 {
	v, _ := m[key].(float64)
	return v
}

func summary(m map[string]any, key string) Summary {
	raw, ok := m[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	s := Summary{}
	for name, v := range raw {
		if f, ok := v.(float64); ok {
			s[name] = f
		}
	}
	if len(s) == 0 {
		return nil
	}
	return s
}

// share reads a palette entry's percentage under any of its legacy names.
func share(m map[string]any) float64 {
	for _, key := range []string{"percent", "percentage", "share"} {
		if v, ok := m[key].(float64); ok {
			return v
		}
	}
	return 0
}
