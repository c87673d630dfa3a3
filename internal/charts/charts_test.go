package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func assertPNG(t *testing.T, img []byte) {
	t.Helper()
	require.Greater(t, len(img), 8)
	assert.Equal(t, pngMagic, img[:4])
}

func TestBar(t *testing.T) {
	img, err := Bar("Shot Types", map[string]float64{"wide": 40, "close-up": 35, "medium": 25})
	require.NoError(t, err)
	assertPNG(t, img)
}

func TestEmptyInputsOmitChart(t *testing.T) {
	// Absent or empty inputs mean "omit this chart", never an error.
	renders := map[string]func() ([]byte, error){
		"bar":       func() ([]byte, error) { return Bar("Shot Types", nil) },
		"donut":     func() ([]byte, error) { return Donut("Emotions", map[string]float64{}) },
		"radar":     func() ([]byte, error) { return Radar(nil) },
		"gauge":     func() ([]byte, error) { return Gauge(nil) },
		"palette":   func() ([]byte, error) { return Palette(nil) },
		"timeline":  func() ([]byte, error) { return Timeline(nil) },
		"histogram": func() ([]byte, error) { return Histogram([]RGBPoint{{Frame: 0, R: 1}}) },
	}
	for name, render := range renders {
		img, err := render()
		assert.NoError(t, err, name)
		assert.Nil(t, img, name)
	}
}

func TestDonut(t *testing.T) {
	img, err := Donut("Emotions", map[string]float64{"neutral": 60, "happy": 30, "sad": 10})
	require.NoError(t, err)
	assertPNG(t, img)
}

func TestRadarAndGauge(t *testing.T) {
	img, err := Radar(map[string]float64{"rule of thirds": 72, "symmetry": 55, "balance": 64, "depth": 40})
	require.NoError(t, err)
	assertPNG(t, img)

	score := 66.0
	img, err = Gauge(&score)
	require.NoError(t, err)
	assertPNG(t, img)
}

func TestPalette(t *testing.T) {
	img, err := Palette([]Swatch{
		{Hex: "#FF0000", RGB: [3]int{255, 0, 0}, Name: "red", Percent: 60},
		{Hex: "#00FF00", RGB: [3]int{0, 255, 0}, Name: "green", Percent: 40},
	})
	require.NoError(t, err)
	assertPNG(t, img)
}

func TestTimelineAndHistogram(t *testing.T) {
	img, err := Timeline([]string{"static", "static", "pan", "zoom", "pan", "unknown-move"})
	require.NoError(t, err)
	assertPNG(t, img)

	img, err = Histogram([]RGBPoint{
		{Frame: 0, R: 120, G: 100, B: 90},
		{Frame: 1, R: 125, G: 98, B: 95},
		{Frame: 2, R: 110, G: 105, B: 99},
	})
	require.NoError(t, err)
	assertPNG(t, img)
}
