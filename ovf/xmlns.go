package ovf

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"
)

// Namespace URIs the editor operates on.
const (
	NamespaceOVF = "http://schemas.dmtf.org/ovf/envelope/1"
	NamespaceVMW = "http://www.vmware.com/schema/ovf"
)

// nsMap extracts the prefix to URI bindings declared on an element,
// skipping the default (unprefixed) namespace declaration.
func nsMap(el *etree.Element) map[string]string {
	m := make(map[string]string)
	for _, a := range el.Attr {
		if a.Space == "xmlns" {
			m[a.Key] = a.Value
		}
	}
	return m
}

// defaultNS returns the default namespace declared on an element, or "".
func defaultNS(el *etree.Element) string {
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == "xmlns" {
			return a.Value
		}
	}
	return ""
}

// childrenNS returns the child elements with the given local name whose
// resolved namespace matches uri. Prefix spelling in the document is
// irrelevant; matching is by URI.
func childrenNS(parent *etree.Element, uri, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.Tag == local && c.NamespaceURI() == uri {
			out = append(out, c)
		}
	}
	return out
}

// firstChildNS returns the first matching child element, or nil.
func firstChildNS(parent *etree.Element, uri, local string) *etree.Element {
	for _, c := range parent.ChildElements() {
		if c.Tag == local && c.NamespaceURI() == uri {
			return c
		}
	}
	return nil
}

// exactlyOneNS resolves a child that must occur exactly once.
func exactlyOneNS(parent *etree.Element, uri, local string) (*etree.Element, error) {
	found := childrenNS(parent, uri, local)
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrMissingSection, local)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s (%d found)", ErrDuplicateSection, local, len(found))
	}
}

// attrNS returns the value of the attribute with the given local key in
// the given namespace, or "".
func attrNS(el *etree.Element, uri, key string) string {
	for _, a := range el.Attr {
		if a.Key == key && a.Space != "" && a.NamespaceURI() == uri {
			return a.Value
		}
	}
	return ""
}

// prefixFor finds a declared prefix bound to uri. The conventional prefix
// is returned when the document binds it; otherwise the lexically smallest
// matching prefix, so repeated serializations stay stable.
func (e *Editor) prefixFor(uri, conventional string) (string, bool) {
	if e.ns[conventional] == uri {
		return conventional, true
	}
	var prefixes []string
	for p, u := range e.ns {
		if u == uri {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return "", false
	}
	sort.Strings(prefixes)
	return prefixes[0], true
}

// elementTag builds the tag for a new child element in the given namespace.
// A declared prefix wins; an element may also fall back to the default
// namespace when the envelope declares one for uri.
func (e *Editor) elementTag(uri, conventional, local string) (string, error) {
	if p, ok := e.prefixFor(uri, conventional); ok {
		return p + ":" + local, nil
	}
	if e.defaultNS == uri {
		return local, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNamespaceNotDeclared, uri)
}

// attrName builds the name for a namespace-qualified attribute. Unlike
// elements, attributes never inherit the default namespace, so a declared
// prefix is mandatory.
func (e *Editor) attrName(uri, conventional, key string) (string, error) {
	p, ok := e.prefixFor(uri, conventional)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNamespaceNotDeclared, uri)
	}
	return p + ":" + key, nil
}
