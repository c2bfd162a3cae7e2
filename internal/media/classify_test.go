package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikel-p-h/PFG/internal/domain/fault"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		expected Kind
	}{
		{"photo.jpg", KindStill},
		{"photo.JPG", KindStill},
		{"photo.jpeg", KindStill},
		{"scan.png", KindStill},
		{"clip.mp4", KindVideo},
		{"clip.avi", KindVideo},
		{"clip.mov", KindVideo},
		{"clip.MKV", KindVideo},
		{"annotations.txt", KindIgnored},
		{"readme.md", KindIgnored},
		{"archive.zip", KindIgnored},
		{"noextension", KindIgnored},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.name), tt.name)
	}
}

func testImage(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	return testImage(t, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})
}

func jpegBytes(t *testing.T) []byte {
	return testImage(t, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})
}

func TestSniffImage(t *testing.T) {
	ext, err := SniffImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)

	ext, err = SniffImage(jpegBytes(t))
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	_, err = SniffImage([]byte("definitely not an image"))
	require.Error(t, err)
	assert.Equal(t, fault.Validation, fault.KindOf(err))
}
