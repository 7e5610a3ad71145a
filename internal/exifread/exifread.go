// Package exifread extracts the capture-device tags used for forensics.
package exifread

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Metadata holds the subset of tags the forensics analyzer inspects. Empty
// strings mean the tag is absent.
type Metadata struct {
	Make             string
	Model            string
	DateTimeOriginal string
	Software         string
	HasGPSLatitude   bool
}

type Reader struct{}

func NewReader() Reader {
	return Reader{}
}

// Read never fails on a missing or damaged EXIF block: a file without
// readable metadata simply has none, and the analyzer penalizes that.
func (Reader) Read(data []byte) (Metadata, error) {
	// Decode may return partial tags alongside a non-critical error.
	x, _ := exif.Decode(bytes.NewReader(data))
	if x == nil {
		return Metadata{}, nil
	}

	_, gpsErr := x.Get(exif.GPSLatitude)
	return Metadata{
		Make:             stringTag(x, exif.Make),
		Model:            stringTag(x, exif.Model),
		DateTimeOriginal: stringTag(x, exif.DateTimeOriginal),
		Software:         stringTag(x, exif.Software),
		HasGPSLatitude:   gpsErr == nil,
	}, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	if tag.Format() != tiff.StringVal {
		return strings.TrimSpace(tag.String())
	}
	val, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(val, "\x00"))
}
