package clip

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, w, h int, fill color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPreprocessImageShape(t *testing.T) {
	path := writeTestPNG(t, 640, 480, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	tensor, err := PreprocessImage(path, DefaultImageSize)
	if err != nil {
		t.Fatal(err)
	}
	want := 3 * DefaultImageSize * DefaultImageSize
	if len(tensor) != want {
		t.Fatalf("tensor length = %d, want %d", len(tensor), want)
	}
}

func TestPreprocessImageNormalization(t *testing.T) {
	// A uniform white image maps every pixel to (1 - mean) / std per channel.
	path := writeTestPNG(t, 300, 300, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	tensor, err := PreprocessImage(path, DefaultImageSize)
	if err != nil {
		t.Fatal(err)
	}

	plane := DefaultImageSize * DefaultImageSize
	for c := 0; c < 3; c++ {
		want := (1.0 - clipMean[c]) / clipStd[c]
		got := tensor[c*plane]
		if math.Abs(float64(got-want)) > 1e-2 {
			t.Errorf("channel %d: value = %f, want %f", c, got, want)
		}
	}
}

func TestPreprocessImageSmallerThanTarget(t *testing.T) {
	path := writeTestPNG(t, 50, 80, color.RGBA{R: 10, G: 200, B: 30, A: 255})

	tensor, err := PreprocessImage(path, DefaultImageSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(tensor) != 3*DefaultImageSize*DefaultImageSize {
		t.Fatalf("tensor length = %d", len(tensor))
	}
}

func TestPreprocessImageMissingFile(t *testing.T) {
	_, err := PreprocessImage("/nonexistent/image.png", DefaultImageSize)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
