package ovf

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff compares the pristine on-disk descriptor against the current
// in-memory document and returns a unified diff of the two canonical
// serializations. The descriptor file is re-parsed fresh, so Diff is
// read-only and may be called any number of times; it returns "" when no
// mutation changed the canonical form.
func (e *Editor) Diff() (string, error) {
	orig, err := loadDocument(e.Path())
	if err != nil {
		return "", err
	}
	origXML, err := ToXML(orig)
	if err != nil {
		return "", err
	}
	curXML, err := ToXML(e.doc)
	if err != nil {
		return "", err
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(origXML),
		B:        difflib.SplitLines(curXML),
		FromFile: e.filename,
		ToFile:   e.filename + " (edited)",
		Context:  3,
	})
}
