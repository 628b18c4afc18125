package figure

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Default labels and sizes.
const (
	DefaultTitle      = "Topology Map"
	TreeTitle         = "Network Tree"
	AdjacencyTitle    = "Adjacency Graph"
	DefaultWidth      = 1600
	DefaultHeight     = 800
	DefaultTimeFormat = "2006-01-02 15:04:05"
)

// ErrCanvasTooSmall is returned when the canvas leaves no room for panels.
var ErrCanvasTooSmall = errors.New("canvas too small")

// Panel is one titled image of the figure.
type Panel struct {
	Title string
	Image image.Image
}

// Options configures [Compose].
type Options struct {
	Width, Height int
	Title         string
	Timestamp     time.Time
	TimeFormat    string
}

// DefaultOptions returns a 1600x800 canvas titled for the given run time.
func DefaultOptions(ts time.Time) Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Title:      DefaultTitle,
		Timestamp:  ts,
		TimeFormat: DefaultTimeFormat,
	}
}

// Heading returns the two heading lines: title and formatted timestamp.
func (o Options) Heading() (string, string) {
	layout := o.TimeFormat
	if layout == "" {
		layout = DefaultTimeFormat
	}
	return o.Title, o.Timestamp.Format(layout)
}

const (
	headerFrac = 0.11 // share of the height taken by the heading
	labelFrac  = 0.05 // share of the height taken by a panel title
	padding    = 16.0
)

var loadFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

func face(size float64) (font.Face, error) {
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Compose draws left and right side by side under the heading and returns
// the PNG encoding. A panel with a nil Image keeps its title and an empty
// frame.
func Compose(left, right Panel, opts Options) ([]byte, error) {
	w, h := float64(opts.Width), float64(opts.Height)
	header, label := h*headerFrac, h*labelFrac
	panelW := w/2 - 2*padding
	panelH := h - header - label - 2*padding
	if panelW < 1 || panelH < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasTooSmall, opts.Width, opts.Height)
	}

	titleFace, err := face(header * 0.38)
	if err != nil {
		return nil, err
	}
	labelFace, err := face(label * 0.6)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(color.White)
	dc.Clear()

	title, stamp := opts.Heading()
	dc.SetColor(color.Black)
	dc.SetFontFace(titleFace)
	dc.DrawStringAnchored(title, w/2, header*0.32, 0.5, 0.5)
	dc.DrawStringAnchored(stamp, w/2, header*0.75, 0.5, 0.5)

	for i, p := range []Panel{left, right} {
		x0 := float64(i)*w/2 + padding
		y0 := header + label + padding

		dc.SetColor(color.Black)
		dc.SetFontFace(labelFace)
		dc.DrawStringAnchored(p.Title, x0+panelW/2, header+label/2, 0.5, 0.5)

		if p.Image != nil {
			img := fitImage(p.Image, int(panelW), int(panelH))
			b := img.Bounds()
			dc.DrawImage(img, int(x0+(panelW-float64(b.Dx()))/2), int(y0+(panelH-float64(b.Dy()))/2))
		}

		dc.SetColor(color.Gray{Y: 0xcc})
		dc.SetLineWidth(1)
		dc.DrawRectangle(x0, y0, panelW, panelH)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// fitImage scales img to fit within maxW x maxH keeping its aspect ratio.
func fitImage(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	scale := min(float64(maxW)/float64(b.Dx()), float64(maxH)/float64(b.Dy()))
	dw, dh := max(1, int(float64(b.Dx())*scale)), max(1, int(float64(b.Dy())*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
