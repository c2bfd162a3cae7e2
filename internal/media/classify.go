package media

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/mikel-p-h/PFG/internal/domain/fault"
)

// Kind classifies one file inside an uploaded archive by extension.
type Kind int

const (
	KindIgnored Kind = iota
	KindStill
	KindVideo
)

var (
	stillExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	videoExts = map[string]bool{".mp4": true, ".avi": true, ".mov": true, ".mkv": true}
)

// Classify maps an extension to a media kind. Anything unrecognized is
// ignored, not an error; sidecar .txt files fall in that bucket too.
func Classify(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case stillExts[ext]:
		return KindStill
	case videoExts[ext]:
		return KindVideo
	default:
		return KindIgnored
	}
}

// SniffImage verifies that payload decodes as a jpeg or png header and
// returns the matching extension (with leading dot).
func SniffImage(payload []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return "", fault.Wrap(fault.Validation, err, "invalid image file")
	}
	switch format {
	case "jpeg":
		return ".jpg", nil
	case "png":
		return ".png", nil
	default:
		return "", fault.Errorf(fault.Validation, "unsupported image format %q", format)
	}
}
