package clip

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// DefaultImageSize is the input resolution of the CLIP vision encoder.
const DefaultImageSize = 224

// Per-channel normalization constants from the CLIP training pipeline.
var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// PreprocessImage loads an image file and converts it to the tensor layout the
// vision encoder expects: resize the shorter side to targetSize, center-crop to
// a targetSize square, normalize per channel, emit CHW float32.
func PreprocessImage(path string, targetSize int) ([]float32, error) {
	if targetSize <= 0 {
		targetSize = DefaultImageSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	return preprocess(img, targetSize), nil
}

func preprocess(img image.Image, targetSize int) []float32 {
	resized := resizeShorterSide(img, targetSize)
	cropped := centerCrop(resized, targetSize)
	return normalizeCHW(cropped, targetSize)
}

// resizeShorterSide scales img so its shorter side equals targetSize,
// preserving aspect ratio.
func resizeShorterSide(img image.Image, targetSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var newW, newH int
	if w < h {
		newW = targetSize
		newH = h * targetSize / w
	} else {
		newH = targetSize
		newW = w * targetSize / h
	}
	if newW < targetSize {
		newW = targetSize
	}
	if newH < targetSize {
		newH = targetSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func centerCrop(img *image.RGBA, targetSize int) *image.RGBA {
	b := img.Bounds()
	x0 := (b.Dx() - targetSize) / 2
	y0 := (b.Dy() - targetSize) / 2

	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(b.Min.X+x0, b.Min.Y+y0), draw.Src)
	return dst
}

// normalizeCHW converts the square RGBA image to a normalized CHW float tensor.
func normalizeCHW(img *image.RGBA, size int) []float32 {
	pixels := make([]float32, 3*size*size)
	channelSize := size * size

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit values; scale to [0,1] first.
			pos := y*size + x
			pixels[pos] = (float32(r)/65535.0 - clipMean[0]) / clipStd[0]
			pixels[channelSize+pos] = (float32(g)/65535.0 - clipMean[1]) / clipStd[1]
			pixels[2*channelSize+pos] = (float32(b)/65535.0 - clipMean[2]) / clipStd[2]
		}
	}
	return pixels
}
