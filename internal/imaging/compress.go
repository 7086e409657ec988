package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

const (
	// DefaultMaxDimension bounds the longest image side in pixels.
	DefaultMaxDimension = 1200
	// DefaultMaxBytes bounds the encoded output size (2 MiB).
	DefaultMaxBytes = 2 << 20
	// DefaultQuality is the initial JPEG quality factor.
	DefaultQuality = 90

	minQuality  = 40
	qualityStep = 10
)

// Compressor re-encodes catalog photos before upload: images are scaled down
// to a bounded dimension and JPEG-encoded, stepping the quality down until
// the output fits the size budget.
type Compressor struct {
	maxDimension uint
	maxBytes     int
	quality      int
}

func NewCompressor() *Compressor {
	return &Compressor{
		maxDimension: DefaultMaxDimension,
		maxBytes:     DefaultMaxBytes,
		quality:      DefaultQuality,
	}
}

// Compress decodes data (JPEG, PNG or GIF), scales it to fit the dimension
// bound and encodes it as JPEG within the size budget. It returns the output
// filename (original name with a .jpg extension) and the encoded bytes.
func (c *Compressor) Compress(filename string, data []byte) (string, []byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) > c.maxDimension || uint(bounds.Dy()) > c.maxDimension {
		if bounds.Dx() >= bounds.Dy() {
			img = resize.Resize(c.maxDimension, 0, img, resize.Lanczos3)
		} else {
			img = resize.Resize(0, c.maxDimension, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	for quality := c.quality; ; quality -= qualityStep {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", nil, fmt.Errorf("encode %s: %w", filename, err)
		}
		if buf.Len() <= c.maxBytes || quality-qualityStep < minQuality {
			break
		}
	}

	return jpegName(filename), buf.Bytes(), nil
}

func jpegName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" {
		base = "image"
	}
	return base + ".jpg"
}
