// Package textenc normalizes text input encodings to UTF-8.
package textenc

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewReader wraps r so BOM-carrying input decodes to plain UTF-8. UTF-16
// streams (either endianness) are converted; a UTF-8 BOM is stripped;
// BOM-less input passes through unchanged. Windows tooling routinely
// exports OVF descriptors as UTF-16 with a BOM.
func NewReader(r io.Reader) io.Reader {
	dec := unicode.UTF8.NewDecoder()
	return transform.NewReader(r, unicode.BOMOverride(dec))
}
