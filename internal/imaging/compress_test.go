package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 50 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompressBoundsDimensions(t *testing.T) {
	c := NewCompressor()

	name, data, err := c.Compress("front.png", pngBytes(t, 2400, 1600))
	require.NoError(t, err)
	assert.Equal(t, "front.jpg", name)

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, img.Bounds().Dx(), DefaultMaxDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), DefaultMaxDimension)
	assert.LessOrEqual(t, len(data), DefaultMaxBytes)
}

func TestCompressKeepsSmallImagesUnscaled(t *testing.T) {
	c := NewCompressor()

	_, data, err := c.Compress("thumb.png", pngBytes(t, 300, 200))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestCompressRejectsNonImageData(t *testing.T) {
	c := NewCompressor()
	_, _, err := c.Compress("notes.txt", []byte("not an image"))
	assert.Error(t, err)
}

func TestJpegNameNormalizesExtension(t *testing.T) {
	assert.Equal(t, "front.jpg", jpegName("front.png"))
	assert.Equal(t, "front.jpg", jpegName("/tmp/uploads/front.jpeg"))
	assert.Equal(t, "image.jpg", jpegName(".png"))
}
