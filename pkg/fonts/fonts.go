// Package fonts supplies the font that labels are measured with and drawn
// in.
//
// The default is Go Bold, which ships with golang.org/x/image, so metrics
// can be built without any font installed. Rendered SVGs embed the same
// font as a data URI, keeping browser text widths equal to the measured
// ones.
package fonts

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// DefaultFamily is the CSS family name of the default font.
const DefaultFamily = "Go"

// FallbackFamily lists CSS fallbacks used after the embedded font.
const FallbackFamily = `system-ui, -apple-system, "Segoe UI", Roboto, sans-serif`

// Format is a font file container.
type Format string

const (
	FormatTrueType Format = "truetype"
	FormatOpenType Format = "opentype"
	FormatWOFF     Format = "woff"
	FormatWOFF2    Format = "woff2"
)

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case FormatTrueType:
		return "font/ttf"
	case FormatOpenType:
		return "font/otf"
	}
	return "font/" + string(f)
}

// Font is a loaded font file.
type Font struct {
	Family string
	Weight string
	Format Format
	Data   []byte

	once    sync.Once
	encoded string
}

// Default returns Go Bold.
func Default() *Font {
	return &Font{Family: DefaultFamily, Weight: "bold", Format: FormatTrueType, Data: gobold.TTF}
}

// Load reads a TrueType, OpenType, WOFF or WOFF2 file. The family name
// defaults to the file name without extension.
func Load(path, family, weight string) (*Font, error) {
	if err := errors.ValidateSource(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "font file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "read font file %s", path)
	}
	format, ok := Detect(data)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s is not a TrueType, OpenType or WOFF font", path)
	}
	if family == "" {
		family = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Font{Family: family, Weight: weight, Format: format, Data: data}, nil
}

// Detect returns the container format of data from its magic number.
func Detect(data []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(data, []byte("wOFF")):
		return FormatWOFF, true
	case bytes.HasPrefix(data, []byte("wOF2")):
		return FormatWOFF2, true
	case bytes.HasPrefix(data, []byte("OTTO")):
		return FormatOpenType, true
	case bytes.HasPrefix(data, []byte{0, 1, 0, 0}), bytes.HasPrefix(data, []byte("true")):
		return FormatTrueType, true
	}
	return "", false
}

// IsSFNT reports whether the font is an uncompressed TrueType or OpenType
// file, which golang.org/x/image can parse directly.
func (f *Font) IsSFNT() bool {
	return f.Format == FormatTrueType || f.Format == FormatOpenType
}

// Base64 returns the font data base64 encoded. The result is computed once.
func (f *Font) Base64() string {
	f.once.Do(func() {
		f.encoded = base64.StdEncoding.EncodeToString(f.Data)
	})
	return f.encoded
}

// DataURI returns the font as a data URI for CSS @font-face rules.
func (f *Font) DataURI() string {
	return "data:" + f.Format.MIME() + ";base64," + f.Base64()
}

// CSSFamily returns the font-family value that prefers f.
func (f *Font) CSSFamily() string {
	return `"` + f.Family + `", ` + FallbackFamily
}
