// Package manifest reads and rewrites OVF manifest sidecar files.
//
// A manifest is a plain-text list of digest lines, one per archive member:
//
//	SHA256(appliance.ovf)= 9f86d08...
//	SHA256(disk-1.vmdk)= 60303ae...
//
// The package only ever touches lines it recognizes and was asked to
// rewrite; everything else, including blank or malformed lines, is carried
// through byte-for-byte in original order.
package manifest

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Algorithm identifies a digest algorithm used by manifest lines.
type Algorithm string

const (
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
)

var (
	// ErrNotFound indicates the manifest sidecar file does not exist.
	ErrNotFound = errors.New("manifest: file not found")
)

// lineRe matches a digest line: ALGO(filename)= digest, with zero or more
// spaces after the equals sign. The digest is not validated as hex here;
// stale or hand-edited manifests still deserve a rewrite on commit.
var lineRe = regexp.MustCompile(`^(SHA1|SHA256)\(([^)]+)\)=[ \t]*(\S+)$`)

// ParseAlgorithm maps a manifest algorithm label to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch Algorithm(strings.ToUpper(s)) {
	case SHA1:
		return SHA1, true
	case SHA256:
		return SHA256, true
	}
	return "", false
}

// Sum computes the hex digest of data under the given algorithm.
func Sum(algo Algorithm, data []byte) string {
	switch algo {
	case SHA1:
		sum := sha1.Sum(data)
		return hex.EncodeToString(sum[:])
	case SHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
	return ""
}

// Entry is one recognized digest line.
type Entry struct {
	Algorithm Algorithm
	Filename  string
	Digest    string
}

// line pairs the raw text of a manifest line (line ending included) with
// its parsed entry, nil for lines the parser does not recognize.
type line struct {
	raw   string
	entry *Entry
}

// Manifest is an in-memory manifest file.
type Manifest struct {
	lines []line
}

// Load reads and parses the manifest at path. A missing file reports
// ErrNotFound.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data), nil
}

// Parse splits manifest text into lines, recognizing digest entries and
// keeping everything else verbatim.
func Parse(data []byte) *Manifest {
	m := &Manifest{}
	for len(data) > 0 {
		raw := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			raw = data[:i+1]
			data = data[i+1:]
		} else {
			data = nil
		}
		m.lines = append(m.lines, parseLine(string(raw)))
	}
	return m
}

func parseLine(raw string) line {
	content := strings.TrimRight(raw, "\r\n")
	match := lineRe.FindStringSubmatch(content)
	if match == nil {
		return line{raw: raw}
	}
	algo, _ := ParseAlgorithm(match[1])
	return line{
		raw: raw,
		entry: &Entry{
			Algorithm: algo,
			Filename:  match[2],
			Digest:    strings.ToLower(match[3]),
		},
	}
}

// Entries lists the recognized digest lines in file order.
func (m *Manifest) Entries() []Entry {
	var out []Entry
	for _, l := range m.lines {
		if l.entry != nil {
			out = append(out, *l.entry)
		}
	}
	return out
}

// Update rewrites every digest line referencing filename with a fresh
// digest of data, computed under that line's own algorithm. Other lines
// are untouched. It returns the number of lines rewritten.
func (m *Manifest) Update(filename string, data []byte) int {
	n := 0
	for i, l := range m.lines {
		if l.entry == nil || l.entry.Filename != filename {
			continue
		}
		digest := Sum(l.entry.Algorithm, data)
		ending := lineEnding(l.raw)
		m.lines[i] = line{
			raw: fmt.Sprintf("%s(%s)= %s%s", l.entry.Algorithm, filename, digest, ending),
			entry: &Entry{
				Algorithm: l.entry.Algorithm,
				Filename:  filename,
				Digest:    digest,
			},
		}
		n++
	}
	return n
}

// String renders the manifest exactly as it will be written.
func (m *Manifest) String() string {
	var b strings.Builder
	for _, l := range m.lines {
		b.WriteString(l.raw)
	}
	return b.String()
}

// Write persists the manifest to path.
func (m *Manifest) Write(path string) error {
	if err := os.WriteFile(path, []byte(m.String()), 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}

// VerifyResult reports the outcome of checking one manifest entry against
// the file it references.
type VerifyResult struct {
	Entry Entry

	// OK is true when the file exists and its digest matches.
	OK bool

	// Err is non-nil when the referenced file could not be read.
	Err error

	// Actual is the recomputed digest, empty when the file was unreadable.
	Actual string
}

// Verify recomputes the digest of every entry's file relative to dir and
// compares it against the recorded digest.
func (m *Manifest) Verify(dir string) []VerifyResult {
	var out []VerifyResult
	for _, e := range m.Entries() {
		res := VerifyResult{Entry: e}
		data, err := os.ReadFile(filepath.Join(dir, e.Filename))
		if err != nil {
			res.Err = err
		} else {
			res.Actual = Sum(e.Algorithm, data)
			res.OK = strings.EqualFold(res.Actual, e.Digest)
		}
		out = append(out, res)
	}
	return out
}

func lineEnding(raw string) string {
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(raw, "\n"):
		return "\n"
	}
	return ""
}
