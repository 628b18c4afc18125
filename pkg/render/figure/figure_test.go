package figure

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompose(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)
	red := color.RGBA{R: 0xff, A: 0xff}
	blue := color.RGBA{B: 0xff, A: 0xff}

	data, err := Compose(
		Panel{Title: TreeTitle, Image: solid(300, 300, red)},
		Panel{Title: AdjacencyTitle, Image: solid(400, 200, blue)},
		DefaultOptions(ts),
	)
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Fatalf("bounds = %v, want %dx%d", b, DefaultWidth, DefaultHeight)
	}

	// Panel centres carry the panel colors.
	cy := DefaultHeight/2 + DefaultHeight/10
	if r, g, b, _ := img.At(DefaultWidth/4, cy).RGBA(); r>>8 < 0xf0 || g>>8 > 0x10 || b>>8 > 0x10 {
		t.Errorf("left panel centre = %v, want red", img.At(DefaultWidth/4, cy))
	}
	if r, g, b, _ := img.At(3*DefaultWidth/4, cy).RGBA(); b>>8 < 0xf0 || r>>8 > 0x10 || g>>8 > 0x10 {
		t.Errorf("right panel centre = %v, want blue", img.At(3*DefaultWidth/4, cy))
	}
	// Corners stay white.
	if r, g, b, _ := img.At(1, DefaultHeight-2).RGBA(); r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("corner = %v, want white", img.At(1, DefaultHeight-2))
	}
}

func TestCompose_NilPanels(t *testing.T) {
	if _, err := Compose(Panel{Title: TreeTitle}, Panel{Title: AdjacencyTitle}, DefaultOptions(time.Now())); err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
}

func TestCompose_TooSmall(t *testing.T) {
	opts := DefaultOptions(time.Now())
	opts.Width, opts.Height = 40, 40
	if _, err := Compose(Panel{}, Panel{}, opts); !errors.Is(err, ErrCanvasTooSmall) {
		t.Errorf("Compose() error = %v, want ErrCanvasTooSmall", err)
	}
}

func TestHeading(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 5, 7, 0, time.UTC)
	tests := []struct {
		name      string
		opts      Options
		wantTitle string
		wantStamp string
	}{
		{"defaults", DefaultOptions(ts), "Topology Map", "2024-05-01 09:05:07"},
		{"empty format", Options{Title: "X", Timestamp: ts}, "X", "2024-05-01 09:05:07"},
		{"custom format", Options{Title: "X", Timestamp: ts, TimeFormat: time.Kitchen}, "X", "9:05AM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, stamp := tt.opts.Heading()
			if title != tt.wantTitle || stamp != tt.wantStamp {
				t.Errorf("Heading() = %q, %q; want %q, %q", title, stamp, tt.wantTitle, tt.wantStamp)
			}
		})
	}
}

func TestFitImage(t *testing.T) {
	got := fitImage(solid(400, 100, color.Black), 200, 200)
	if b := got.Bounds(); b.Dx() != 200 || b.Dy() != 50 {
		t.Errorf("fitImage bounds = %v, want 200x50", b)
	}
}
