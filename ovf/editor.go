package ovf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/joshuapare/ovfkit/internal/textenc"
)

// Editor owns a parsed OVF descriptor and the section anchors the mutation
// operations act on. Create one with Open; an Editor is single-use and not
// safe for concurrent access.
type Editor struct {
	dir      string
	filename string

	doc       *etree.Document
	ns        map[string]string // prefix -> URI, captured from the envelope
	defaultNS string

	product    *etree.Element
	hardware   *etree.Element
	annotation *etree.Element
	fileRef    *etree.Element // nil when the descriptor references no file
}

// Property is a custom key/value entry under ProductSection.
type Property struct {
	Key              string
	Value            string
	Type             string
	UserConfigurable bool
}

// ExtraConfig is a vendor-specific key/value entry under
// VirtualHardwareSection.
type ExtraConfig struct {
	Key      string
	Value    string
	Required bool
}

// Open parses the descriptor at path and resolves the section anchors.
// ProductSection, VirtualHardwareSection and AnnotationSection must each
// occur exactly once; the References/File entry may be absent.
func Open(path string) (*Editor, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil || root.Tag != "Envelope" || root.NamespaceURI() != NamespaceOVF {
		return nil, fmt.Errorf("%w: %s", ErrNotDescriptor, path)
	}

	e := &Editor{
		dir:       filepath.Dir(path),
		filename:  filepath.Base(path),
		doc:       doc,
		ns:        nsMap(root),
		defaultNS: defaultNS(root),
	}

	vs, err := exactlyOneNS(root, NamespaceOVF, "VirtualSystem")
	if err != nil {
		return nil, err
	}
	if e.product, err = exactlyOneNS(vs, NamespaceOVF, "ProductSection"); err != nil {
		return nil, err
	}
	if e.hardware, err = exactlyOneNS(vs, NamespaceOVF, "VirtualHardwareSection"); err != nil {
		return nil, err
	}
	if e.annotation, err = exactlyOneNS(vs, NamespaceOVF, "AnnotationSection"); err != nil {
		return nil, err
	}

	// File reference is optional: descriptors without disks are legal and
	// multi-disk descriptors use the first entry. This subtree is never
	// mutated, only read by DiskPath.
	if refs := firstChildNS(root, NamespaceOVF, "References"); refs != nil {
		if files := childrenNS(refs, NamespaceOVF, "File"); len(files) > 0 {
			e.fileRef = files[0]
		}
	}

	return e, nil
}

// loadDocument parses the file at path into an element tree. The reader is
// BOM-tolerant so UTF-16 descriptors exported by Windows tooling decode
// transparently.
func loadDocument(path string) (*etree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ovf: open descriptor: %w", err)
	}
	defer f.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(textenc.NewReader(f)); err != nil {
		return nil, fmt.Errorf("ovf: parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Path returns the descriptor's on-disk path.
func (e *Editor) Path() string {
	return filepath.Join(e.dir, e.filename)
}

// ManifestPath returns the path of the sidecar manifest file.
func (e *Editor) ManifestPath() string {
	return filepath.Join(e.dir, ManifestName(e.filename))
}

// ManifestName derives the manifest filename for a descriptor filename,
// e.g. "appliance.ovf" becomes "appliance.mf".
func ManifestName(ovfFilename string) string {
	return strings.TrimSuffix(ovfFilename, filepath.Ext(ovfFilename)) + ".mf"
}

// DiskPath returns the path of the referenced disk image, joining the
// descriptor's directory with the File element's href.
func (e *Editor) DiskPath() (string, error) {
	if e.fileRef == nil {
		return "", ErrNoFileReference
	}
	href := attrNS(e.fileRef, NamespaceOVF, "href")
	if href == "" {
		return "", fmt.Errorf("%w: File href", ErrMissingElement)
	}
	return filepath.Join(e.dir, href), nil
}

// Product returns the text of the ProductSection's Product element, or ""
// when absent.
func (e *Editor) Product() string {
	return childText(e.product, "Product")
}

// Version returns the text of the ProductSection's Version element.
func (e *Editor) Version() string {
	return childText(e.product, "Version")
}

// FullVersion returns the text of the ProductSection's FullVersion element.
func (e *Editor) FullVersion() string {
	return childText(e.product, "FullVersion")
}

// Annotation returns the current annotation text, or "" when none is set.
func (e *Editor) Annotation() string {
	return childText(e.annotation, "Annotation")
}

// Properties lists the custom properties under ProductSection in document
// order.
func (e *Editor) Properties() []Property {
	var out []Property
	for _, p := range childrenNS(e.product, NamespaceOVF, "Property") {
		out = append(out, Property{
			Key:              attrNS(p, NamespaceOVF, "key"),
			Value:            attrNS(p, NamespaceOVF, "value"),
			Type:             attrNS(p, NamespaceOVF, "type"),
			UserConfigurable: attrNS(p, NamespaceOVF, "userConfigurable") == "true",
		})
	}
	return out
}

// ExtraConfigs lists the vendor extra-config entries under
// VirtualHardwareSection in document order.
func (e *Editor) ExtraConfigs() []ExtraConfig {
	var out []ExtraConfig
	for _, c := range childrenNS(e.hardware, NamespaceVMW, "ExtraConfig") {
		out = append(out, ExtraConfig{
			Key:      attrNS(c, NamespaceVMW, "key"),
			Value:    attrNS(c, NamespaceVMW, "value"),
			Required: attrNS(c, NamespaceOVF, "required") == "true",
		})
	}
	return out
}

func childText(parent *etree.Element, local string) string {
	if c := firstChildNS(parent, NamespaceOVF, local); c != nil {
		return c.Text()
	}
	return ""
}
