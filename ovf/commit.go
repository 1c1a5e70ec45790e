package ovf

import (
	"fmt"
	"os"

	"github.com/joshuapare/ovfkit/manifest"
)

// Commit serializes the current document, overwrites the descriptor at its
// original path and rewrites the matching digest lines in the sidecar
// manifest. Whichever SHA1/SHA256 lines reference the descriptor are
// refreshed; all other manifest lines pass through untouched.
//
// The manifest is loaded before the descriptor is written so a missing
// sidecar fails the commit with nothing modified. Once the descriptor write
// has happened a manifest write failure leaves the pair inconsistent; there
// is no rollback.
func (e *Editor) Commit() error {
	text, err := ToXML(e.doc)
	if err != nil {
		return err
	}
	data := []byte(text)

	m, err := manifest.Load(e.ManifestPath())
	if err != nil {
		return err
	}

	if err := os.WriteFile(e.Path(), data, 0o644); err != nil {
		return fmt.Errorf("ovf: write descriptor: %w", err)
	}

	m.Update(e.filename, data)
	if err := m.Write(e.ManifestPath()); err != nil {
		return fmt.Errorf("ovf: write manifest: %w", err)
	}
	return nil
}
