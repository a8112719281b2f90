package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Downsample scales img to width x height with a Catmull-Rom filter. A
// framebuffer rendered at a multiple of the output size comes out
// antialiased.
func Downsample(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// SaveImage writes img to path. The encoder is picked from the extension:
// .webp or .png.
func SaveImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".webp" && ext != ".png" {
		return fmt.Errorf("save %s: unsupported image format %q", path, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()

	switch ext {
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Save writes the framebuffer to path, downsampled to width x height when
// those differ from its own size.
func (fb *Framebuffer) Save(path string, width, height int) error {
	var img image.Image = fb.Image()
	if width > 0 && height > 0 && (width != fb.Width || height != fb.Height) {
		img = Downsample(img, width, height)
	}
	return SaveImage(path, img)
}
