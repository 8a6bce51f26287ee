// Package media re-encodes uploaded images to drop embedded metadata.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const jpegQuality = 92

type codec struct {
	decode func(io.Reader) (image.Image, error)
	encode func(io.Writer, image.Image) error
}

// codecs covers the image types the upload filter admits.
var codecs = map[string]codec{
	"image/jpeg": {
		decode: jpeg.Decode,
		encode: func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: jpegQuality})
		},
	},
	"image/png": {
		decode: png.Decode,
		encode: png.Encode,
	},
}

// StripMetadata decodes and re-encodes jpeg and png data so only pixels
// survive. Other content types are returned unchanged.
func StripMetadata(data []byte, contentType string) ([]byte, error) {
	c, ok := codecs[contentType]
	if !ok {
		return data, nil
	}

	img, err := c.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", contentType, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	if err := c.encode(&buf, img); err != nil {
		return nil, fmt.Errorf("media: encode %s: %w", contentType, err)
	}
	return buf.Bytes(), nil
}

// StripReader reads all of r, detects its type from content and strips it.
func StripReader(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("media: read upload: %w", err)
	}
	out, err := StripMetadata(data, mimetype.Detect(data).String())
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}
