// Package debug provides developer captures of the viewer output.
package debug

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/Faultbox/studiorender/internal/preview"
)

// ScreenshotCapture writes framebuffer captures as WebP files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for screenshots.
func (sc *ScreenshotCapture) SetOutputDir(dir string) {
	sc.outputDir = dir
}

// FlipRows copies bottom-up RGBA rows, as read back from OpenGL, into a
// top-down image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, errors.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// CaptureFromPixels saves bottom-up RGBA pixel data and returns the file name.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}
	return sc.CaptureFromImage(img)
}

// CaptureFromImage saves img and returns the file name.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image) (string, error) {
	filename := sc.GenerateFilename()
	if err := preview.Save(filename, img); err != nil {
		return "", errors.Wrap(err, "saving screenshot")
	}
	return filename, nil
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.webp", sc.prefix, timestamp)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}
