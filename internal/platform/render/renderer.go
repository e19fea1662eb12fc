// Package render produces the printable card images served from the image
// endpoint and written by the render command. Layout is specified in a
// 500x300 design space and rasterized at 3x for print quality.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/cardvault/cardvault/internal/domain/card"
)

const (
	scale   = 3
	designW = 500
	designH = 300
)

// Back-side layout in design-space units.
const (
	startX      = 60
	startY      = 60
	columnWidth = 180
	lineHeight  = 35
	qrX         = 20
	qrY         = 200
	qrSize      = 80
)

type field struct {
	label string
	value func(*card.Card) string
}

var leftColumn = []field{
	{"PATIENT NAME", func(c *card.Card) string { return c.Patient }},
	{"CASE ID", func(c *card.Card) string { return c.CaseID }},
	{"VALID FROM", func(c *card.Card) string { return c.ValidFrom }},
	{"VALID TO", func(c *card.Card) string { return c.ValidTo }},
}

var rightColumn = []field{
	{"DOCTOR", func(c *card.Card) string { return c.Doctor }},
	{"DOCTOR MOBILE", func(c *card.Card) string { return c.DoctorMobile }},
	{"LAB NAME", func(c *card.Card) string { return c.Lab }},
	{"LAB MOBILE", func(c *card.Card) string { return c.LabMobile }},
}

// Renderer draws card fronts and backs. Font data is parsed once at
// construction, but truetype faces carry an unsynchronized glyph cache, so
// every render builds its own faces; a Renderer is safe for concurrent use.
type Renderer struct {
	baseURL  string
	assetDir string

	regular *truetype.Font
	bold    *truetype.Font
}

// faces is the per-render set of font faces.
type faces struct {
	label   font.Face
	value   font.Face
	title   font.Face
	caption font.Face
}

// New builds a renderer. baseURL is the public origin encoded into QR codes;
// assetDir optionally holds card-front.png and card-back.png backgrounds,
// falling back to gradients when absent.
func New(baseURL, assetDir string) (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &Renderer{
		baseURL:  baseURL,
		assetDir: assetDir,
		regular:  regular,
		bold:     bold,
	}, nil
}

// gg draws glyphs at face size regardless of the transform matrix, so faces
// are created pre-scaled instead of scaling the context.
func (r *Renderer) newFaces() faces {
	return faces{
		label:   truetype.NewFace(r.regular, &truetype.Options{Size: 8 * scale}),
		value:   truetype.NewFace(r.bold, &truetype.Options{Size: 11 * scale}),
		title:   truetype.NewFace(r.bold, &truetype.Options{Size: 24 * scale}),
		caption: truetype.NewFace(r.regular, &truetype.Options{Size: 8 * scale}),
	}
}

// RenderPNG renders one side of the card and returns the encoded PNG.
// Output is deterministic for a given card, side, and asset set.
func (r *Renderer) RenderPNG(c *card.Card, side string) ([]byte, error) {
	dc := gg.NewContext(designW*scale, designH*scale)
	f := r.newFaces()

	switch side {
	case "front":
		r.drawFront(dc, f, c)
	case "back":
		if err := r.drawBack(dc, f, c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown card side: %s", side)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the download filename for a rendered side, keyed by case id
// when present so exported files sort by case.
func (r *Renderer) FileName(c *card.Card, side string) string {
	key := c.CaseID
	if key == "" {
		key = c.CardID
	}
	return key + "-" + side + ".png"
}

func (r *Renderer) drawFront(dc *gg.Context, f faces, c *card.Card) {
	if r.drawBackground(dc, "card-front.png") {
		return
	}
	grad := gg.NewLinearGradient(0, 0, designW*scale, designH*scale)
	grad.AddColorStop(0, color.RGBA{0x66, 0x7e, 0xea, 0xff})
	grad.AddColorStop(1, color.RGBA{0x76, 0x4b, 0xa2, 0xff})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, designW*scale, designH*scale)
	dc.Fill()

	dc.SetFontFace(f.title)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("Medical Card", 250*scale, 150*scale, 0.5, 0.5)
}

func (r *Renderer) drawBack(dc *gg.Context, f faces, c *card.Card) error {
	if !r.drawBackground(dc, "card-back.png") {
		grad := gg.NewLinearGradient(0, 0, designW*scale, designH*scale)
		grad.AddColorStop(0, color.RGBA{0xf0, 0x93, 0xfb, 0xff})
		grad.AddColorStop(1, color.RGBA{0xf5, 0x57, 0x6c, 0xff})
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, designW*scale, designH*scale)
		dc.Fill()
	}

	r.drawColumn(dc, f, c, leftColumn, startX)
	r.drawColumn(dc, f, c, rightColumn, startX+columnWidth)

	return r.drawQR(dc, f, c)
}

func (r *Renderer) drawColumn(dc *gg.Context, f faces, c *card.Card, fields []field, x float64) {
	y := float64(startY)
	for _, fld := range fields {
		dc.SetFontFace(f.label)
		dc.SetRGBA(1, 1, 1, 0.8)
		dc.DrawString(fld.label, x*scale, y*scale)

		dc.SetRGBA(1, 1, 1, 0.4)
		dc.SetLineWidth(scale)
		dc.DrawLine(x*scale, (y+3)*scale, (x+160)*scale, (y+3)*scale)
		dc.Stroke()

		value := fld.value(c)
		if value == "" {
			value = "-"
		}
		dc.SetFontFace(f.value)
		dc.SetRGB(1, 1, 1)
		dc.DrawString(truncate(dc, value, 160*scale), x*scale, (y+18)*scale)

		y += lineHeight
	}
}

func (r *Renderer) drawQR(dc *gg.Context, f faces, c *card.Card) error {
	qr, err := qrcode.New(r.baseURL+"/c/"+c.CardID, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to build qr code: %w", err)
	}
	dc.DrawImage(qr.Image(qrSize*scale), qrX*scale, qrY*scale)

	dc.SetFontFace(f.caption)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("Scan to verify", (qrX+qrSize/2)*scale, (qrY+qrSize+10)*scale, 0.5, 0.5)
	return nil
}

// drawBackground paints the named asset stretched to the canvas, reporting
// whether an asset was drawn.
func (r *Renderer) drawBackground(dc *gg.Context, name string) bool {
	if r.assetDir == "" {
		return false
	}
	img, err := gg.LoadImage(filepath.Join(r.assetDir, name))
	if err != nil {
		log.Debug().Err(err).Str("asset", name).Msg("background asset unavailable, using gradient")
		return false
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return false
	}
	dc.Push()
	dc.Scale(float64(designW*scale)/float64(bounds.Dx()), float64(designH*scale)/float64(bounds.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
	return true
}

// truncate shortens s until it fits maxWidth under the current font face,
// appending an ellipsis when anything was cut.
func truncate(dc *gg.Context, s string, maxWidth float64) string {
	if w, _ := dc.MeasureString(s); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			return candidate
		}
	}
	return ""
}
