package ovf

import (
	"fmt"

	"github.com/beevik/etree"
)

// PropertyOptions carries the optional attributes of a product property.
type PropertyOptions struct {
	// Type is the OVF property type attribute. Defaults to "string".
	Type string

	// UserConfigurable marks the property as editable at deploy time.
	UserConfigurable bool

	// Comment appends an XML comment echoing the value next to the
	// property, useful when the value is opaque (base64, JSON).
	Comment bool
}

// SetProductProperty inserts or replaces the custom property with the given
// key under ProductSection. Any existing property with the same key is
// removed first, so repeated calls never accumulate duplicates.
func (e *Editor) SetProductProperty(key, value string, opts *PropertyOptions) error {
	if key == "" {
		return fmt.Errorf("%w: product property", ErrEmptyKey)
	}
	if opts == nil {
		opts = &PropertyOptions{}
	}
	typ := opts.Type
	if typ == "" {
		typ = "string"
	}

	names, err := e.attrNames(NamespaceOVF, "ovf", "key", "value", "type", "userConfigurable")
	if err != nil {
		return err
	}
	tag, err := e.elementTag(NamespaceOVF, "ovf", "Property")
	if err != nil {
		return err
	}

	removeKeyed(e.product, NamespaceOVF, "Property", NamespaceOVF, key)

	prop := e.product.CreateElement(tag)
	prop.CreateAttr(names[0], key)
	prop.CreateAttr(names[1], value)
	prop.CreateAttr(names[2], typ)
	prop.CreateAttr(names[3], boolAttr(opts.UserConfigurable))
	if opts.Comment {
		prop.CreateComment("value=" + value)
	}
	return nil
}

// SetExtraConfig inserts or replaces the vendor extra-config entry with the
// given key under VirtualHardwareSection.
func (e *Editor) SetExtraConfig(key, value string, required bool) error {
	if key == "" {
		return fmt.Errorf("%w: extra config", ErrEmptyKey)
	}

	names, err := e.attrNames(NamespaceVMW, "vmw", "key", "value")
	if err != nil {
		return err
	}
	requiredAttr, err := e.attrName(NamespaceOVF, "ovf", "required")
	if err != nil {
		return err
	}
	tag, err := e.elementTag(NamespaceVMW, "vmw", "ExtraConfig")
	if err != nil {
		return err
	}

	removeKeyed(e.hardware, NamespaceVMW, "ExtraConfig", NamespaceVMW, key)

	ec := e.hardware.CreateElement(tag)
	ec.CreateAttr(names[0], key)
	ec.CreateAttr(names[1], value)
	ec.CreateAttr(requiredAttr, boolAttr(required))
	return nil
}

// SetAnnotation replaces the annotation text under AnnotationSection.
func (e *Editor) SetAnnotation(value string) error {
	tag, err := e.elementTag(NamespaceOVF, "ovf", "Annotation")
	if err != nil {
		return err
	}
	for _, old := range childrenNS(e.annotation, NamespaceOVF, "Annotation") {
		e.annotation.RemoveChild(old)
	}
	e.annotation.CreateElement(tag).SetText(value)
	return nil
}

// SetVersion overwrites the text of both the Version and FullVersion
// elements of ProductSection. Both must already exist in the descriptor.
func (e *Editor) SetVersion(version string) error {
	if err := e.setProductChildText("Version", version); err != nil {
		return err
	}
	return e.setProductChildText("FullVersion", version)
}

// SetProduct overwrites the text of the Product element of ProductSection.
func (e *Editor) SetProduct(value string) error {
	return e.setProductChildText("Product", value)
}

func (e *Editor) setProductChildText(local, text string) error {
	c := firstChildNS(e.product, NamespaceOVF, local)
	if c == nil {
		return fmt.Errorf("%w: ProductSection/%s", ErrMissingElement, local)
	}
	c.SetText(text)
	return nil
}

// attrNames resolves several qualified attribute names in one namespace.
func (e *Editor) attrNames(uri, conventional string, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		name, err := e.attrName(uri, conventional, k)
		if err != nil {
			return nil, err
		}
		out[i] = name
	}
	return out, nil
}

// removeKeyed removes every child element with the given name whose key
// attribute equals key.
func removeKeyed(parent *etree.Element, elemURI, local, keyURI, key string) {
	var doomed []*etree.Element
	for _, c := range childrenNS(parent, elemURI, local) {
		if attrNS(c, keyURI, "key") == key {
			doomed = append(doomed, c)
		}
	}
	for _, c := range doomed {
		parent.RemoveChild(c)
	}
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
