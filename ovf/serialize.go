package ovf

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
)

// xmlDeclaration is the fixed prolog of every serialization. The manifest
// digest is computed over the serialized text, so the declaration must never
// vary between runs.
const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

const indentSpaces = 2

// ToXML renders a descriptor document in canonical form: 2-space indented,
// UTF-8, fixed XML declaration, trailing newline. The input tree is left
// untouched; indentation happens on a copy.
func ToXML(doc *etree.Document) (string, error) {
	if doc.Root() == nil {
		return "", errors.New("ovf: document has no root element")
	}

	// Serialize a fresh document holding only a copy of the root. This keeps
	// the input untouched and drops any prolog tokens (declarations,
	// comments) carried over from the parsed file, so the declaration below
	// is the only one in the output.
	c := etree.NewDocument()
	c.SetRoot(doc.Root().Copy())
	c.Indent(indentSpaces)

	body, err := c.WriteToString()
	if err != nil {
		return "", err
	}
	body = strings.TrimLeft(body, "\r\n")
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return xmlDeclaration + "\n" + body, nil
}
