package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/cinelens/cinelens/internal/charts"
)

// Product is the name stamped on generated reports and report filenames.
const Product = "CineLens"

const noDataLine = "No data available for this analysis."

// ErrNoTitle is returned when a report cannot name its own document.
var ErrNoTitle = errors.New("report: missing title")

// ImageFetcher resolves a remote image URL to raw bytes. A nil return means
// the image is unavailable and its visual slot is skipped.
type ImageFetcher func(ctx context.Context, url string) []byte

// Assembler paginates a completed AnalysisReport into a PDF document. Charts
// are rasterized one at a time, in a fixed order; every section tolerates
// missing data with a placeholder line instead of being dropped.
type Assembler struct {
	fetch ImageFetcher
	log   *slog.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithImageFetcher supplies the fetcher used for posters and actor photos.
func WithImageFetcher(f ImageFetcher) AssemblerOption {
	return func(a *Assembler) { a.fetch = f }
}

// WithAssemblerLogger sets the assembler's logger.
func WithAssemblerLogger(l *slog.Logger) AssemblerOption {
	return func(a *Assembler) { a.log = l }
}

// NewAssembler returns a ready Assembler. Without an ImageFetcher all remote
// image slots are skipped.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Filename is the produced artifact's name: "<product> - <title>.pdf".
func (a *Assembler) Filename(title string) string {
	return fmt.Sprintf("%s - %s.pdf", Product, title)
}

// Build renders the full document and returns its bytes. The only fatal
// condition is a missing title; every other absent input degrades to a
// placeholder or an omitted image slot.
func (a *Assembler) Build(ctx context.Context, r *AnalysisReport) ([]byte, error) {
	pdf, err := a.build(ctx, r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *Assembler) build(ctx context.Context, r *AnalysisReport) (*fpdf.Fpdf, error) {
	if r == nil || r.Title == "" {
		return nil, ErrNoTitle
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - %s", Product, r.Title), false)

	doc := &document{pdf: pdf, asm: a, ctx: ctx, imgSeq: 0}

	doc.cover(r)
	doc.cast(r)
	doc.summarySection("Shot Types", r.ShotTypes, func() ([]byte, error) {
		return charts.Bar("Shot Type Distribution", r.ShotTypes)
	})
	doc.summarySection("Emotions", r.Emotions, func() ([]byte, error) {
		return charts.Donut("Dominant Emotions", r.Emotions)
	})
	doc.colorSection(r)
	doc.compositionSection(r)
	doc.summarySection("Lighting", r.Lighting, func() ([]byte, error) {
		return charts.Donut("Lighting Zones", r.Lighting)
	})
	doc.movementSection(r)

	return pdf, nil
}

// document carries the page-building state for one Build call.
type document struct {
	pdf    *fpdf.Fpdf
	asm    *Assembler
	ctx    context.Context
	imgSeq int
}

func (d *document) sectionPage(title string) {
	d.pdf.AddPage()
	d.pdf.SetFont("Helvetica", "B", 20)
	d.pdf.SetTextColor(30, 30, 30)
	d.pdf.CellFormat(0, 12, title, "", 1, "L", false, 0, "")
	d.pdf.SetDrawColor(200, 200, 200)
	d.pdf.Line(10, d.pdf.GetY()+1, 200, d.pdf.GetY()+1)
	d.pdf.Ln(8)
}

func (d *document) placeholder() {
	d.pdf.SetFont("Helvetica", "I", 11)
	d.pdf.SetTextColor(120, 120, 120)
	d.pdf.CellFormat(0, 8, noDataLine, "", 1, "L", false, 0, "")
}

func (d *document) text(size float64, style, s string) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetTextColor(50, 50, 50)
	d.pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
}

// embedPNG places a rasterized chart at the current Y, full content width.
func (d *document) embedPNG(img []byte, w float64) {
	d.imgSeq++
	name := fmt.Sprintf("chart-%d", d.imgSeq)
	d.pdf.RegisterImageOptionsReader(name,
		fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))
	d.pdf.ImageOptions(name, 15, d.pdf.GetY()+4, w, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	d.pdf.Ln(6)
}

// embedRemote fetches a remote image and places it at (x, y). A failed fetch
// or unsupported format skips the slot; the document never fails on images.
func (d *document) embedRemote(url string, x, y, w float64) bool {
	if url == "" || d.asm.fetch == nil {
		return false
	}
	img := d.asm.fetch(d.ctx, url)
	if img == nil {
		return false
	}

	var imgType string
	switch http.DetectContentType(img) {
	case "image/jpeg":
		imgType = "JPG"
	case "image/png":
		imgType = "PNG"
	default:
		d.asm.log.Debug("skipping image with unsupported format", "url", url)
		return false
	}

	d.imgSeq++
	name := fmt.Sprintf("remote-%d", d.imgSeq)
	d.pdf.RegisterImageOptionsReader(name,
		fpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(img))
	d.pdf.ImageOptions(name, x, y, w, 0, false, fpdf.ImageOptions{ImageType: imgType}, 0, "")
	return true
}

func (d *document) cover(r *AnalysisReport) {
	d.pdf.AddPage()
	d.pdf.Ln(30)
	d.pdf.SetFont("Helvetica", "B", 30)
	d.pdf.SetTextColor(20, 20, 20)
	d.pdf.CellFormat(0, 16, Product, "", 1, "C", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 14)
	d.pdf.SetTextColor(90, 90, 90)
	d.pdf.CellFormat(0, 10, "Cinematography Analysis Report", "", 1, "C", false, 0, "")
	d.pdf.Ln(10)

	d.pdf.SetFont("Helvetica", "B", 22)
	d.pdf.SetTextColor(30, 30, 30)
	d.pdf.CellFormat(0, 12, r.Title, "", 1, "C", false, 0, "")
	d.pdf.Ln(6)

	if d.embedRemote(r.PosterURL, 75, d.pdf.GetY(), 60) {
		d.pdf.SetY(d.pdf.GetY() + 95)
	}

	d.pdf.SetFont("Helvetica", "", 12)
	d.pdf.SetTextColor(70, 70, 70)
	d.pdf.CellFormat(0, 8, fmt.Sprintf("Duration: %.1fs", r.Duration), "", 1, "C", false, 0, "")
	d.pdf.CellFormat(0, 8, fmt.Sprintf("Frames analyzed: %d", r.FrameCount), "", 1, "C", false, 0, "")
}

func (d *document) cast(r *AnalysisReport) {
	d.sectionPage("Cast")
	if len(r.Actors) == 0 {
		d.placeholder()
		return
	}

	actors := make([]Actor, len(r.Actors))
	copy(actors, r.Actors)
	sort.Slice(actors, func(i, j int) bool { return actors[i].Detections > actors[j].Detections })

	for _, actor := range actors {
		y := d.pdf.GetY()
		hasPhoto := d.embedRemote(actor.PhotoURL, 15, y, 22)

		textX := 15.0
		if hasPhoto {
			textX = 42
		}
		d.pdf.SetXY(textX, y+2)
		d.pdf.SetFont("Helvetica", "B", 13)
		d.pdf.SetTextColor(30, 30, 30)
		d.pdf.CellFormat(0, 7, actor.Name, "", 2, "L", false, 0, "")

		d.pdf.SetX(textX)
		d.pdf.SetFont("Helvetica", "", 11)
		d.pdf.SetTextColor(90, 90, 90)
		if actor.Character != "" {
			d.pdf.CellFormat(0, 6, "as "+actor.Character, "", 2, "L", false, 0, "")
			d.pdf.SetX(textX)
		}
		d.pdf.CellFormat(0, 6,
			fmt.Sprintf("%d detections, %.0f%% similarity", actor.Detections, actor.Similarity*100),
			"", 2, "L", false, 0, "")

		rowBottom := y + 34
		if hasPhoto && d.pdf.GetY() < rowBottom {
			d.pdf.SetY(rowBottom)
		} else {
			d.pdf.Ln(5)
		}
	}
}

// summarySection is the common shape for dimensions that render as a single
// chart plus a ranked list.
func (d *document) summarySection(title string, s Summary, render func() ([]byte, error)) {
	d.sectionPage(title)
	if len(s) == 0 {
		d.placeholder()
		return
	}

	img, err := render()
	if err != nil {
		d.asm.log.Warn("chart rendering failed", "section", title, "err", err)
	}
	if img != nil {
		d.embedPNG(img, 170)
	}

	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return s[names[i]] > s[names[j]] })
	for _, name := range names {
		d.text(11, "", fmt.Sprintf("%s: %.1f%%", name, s[name]))
	}
}

// swatches converts the report palette into chart rows, dropping entries that
// fail validation.
func swatches(entries []PaletteEntry) []charts.Swatch {
	var out []charts.Swatch
	for _, e := range ValidPalette(entries) {
		out = append(out, charts.Swatch{Hex: e.Hex, RGB: e.RGB, Name: e.Name, Percent: e.Percent})
	}
	return out
}

func rgbSeries(series []RGBPoint) []charts.RGBPoint {
	out := make([]charts.RGBPoint, len(series))
	for i, p := range series {
		out[i] = charts.RGBPoint{Frame: p.Frame, R: p.R, G: p.G, B: p.B}
	}
	return out
}

func (d *document) colorSection(r *AnalysisReport) {
	d.sectionPage("Color")
	palette, _ := charts.Palette(swatches(r.Palette))
	histogram, _ := charts.Histogram(rgbSeries(r.RGBSeries))
	if palette == nil && histogram == nil {
		d.placeholder()
		return
	}
	if palette != nil {
		d.text(13, "B", "Dominant Palette")
		d.embedPNG(palette, 150)
	}
	if histogram != nil {
		d.text(13, "B", "Channel Intensity")
		d.embedPNG(histogram, 170)
	}
}

func (d *document) compositionSection(r *AnalysisReport) {
	d.sectionPage("Composition")
	radar, _ := charts.Radar(r.Composition)
	gauge, _ := charts.Gauge(r.CompositionScore)
	if radar == nil && gauge == nil {
		d.placeholder()
		return
	}
	if gauge != nil {
		d.text(13, "B", "Overall Score")
		d.embedPNG(gauge, 110)
	}
	if radar != nil {
		d.text(13, "B", "By Dimension")
		d.embedPNG(radar, 130)
	}
}

func (d *document) movementSection(r *AnalysisReport) {
	d.sectionPage("Camera Movement")
	timeline, _ := charts.Timeline(r.MovementTimeline)
	if timeline == nil && len(r.CameraMovement) == 0 {
		d.placeholder()
		return
	}
	if timeline != nil {
		d.text(13, "B", "Timeline")
		d.embedPNG(timeline, 170)
	}
	if len(r.CameraMovement) > 0 {
		img, err := charts.Bar("Movement Share", r.CameraMovement)
		if err != nil {
			d.asm.log.Warn("chart rendering failed", "section", "Camera Movement", "err", err)
		}
		if img != nil {
			d.embedPNG(img, 160)
		}
	}
}
