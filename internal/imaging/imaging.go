// Package imaging prepares uploaded product images for the backend.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

const MaxWidth = 800

var ErrUnsupported = errors.New("unsupported image format, only PNG, JPG, JPEG are allowed")

// Decode reads a PNG or JPEG, chosen by the file extension.
func Decode(r io.Reader, filename string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	}
	return nil, ErrUnsupported
}

// DataURL shrinks img to MaxWidth (keeping aspect ratio), encodes it as JPEG
// quality 80 and returns it as a data: URL.
func DataURL(img image.Image) (string, error) {
	if img.Bounds().Dx() > MaxWidth {
		img = resize.Resize(MaxWidth, 0, img, resize.Lanczos3)
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// FromUpload is Decode followed by DataURL.
func FromUpload(r io.Reader, filename string) (string, error) {
	img, err := Decode(r, filename)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return "", err
		}
		return "", fmt.Errorf("decode image: %w", err)
	}
	return DataURL(img)
}
