package ovf

import "errors"

var (
	// ErrNotDescriptor indicates the file parsed as XML but is not an
	// OVF envelope.
	ErrNotDescriptor = errors.New("ovf: not an OVF descriptor")

	// ErrMissingSection indicates a required section is absent.
	ErrMissingSection = errors.New("ovf: required section missing")

	// ErrDuplicateSection indicates a section that must be unique appears
	// more than once.
	ErrDuplicateSection = errors.New("ovf: section appears more than once")

	// ErrMissingElement indicates an expected child element is absent.
	ErrMissingElement = errors.New("ovf: expected element missing")

	// ErrEmptyKey indicates a property or extra-config key is empty.
	ErrEmptyKey = errors.New("ovf: key must not be empty")

	// ErrNamespaceNotDeclared indicates the envelope declares no prefix
	// for a namespace the operation needs to qualify attributes with.
	ErrNamespaceNotDeclared = errors.New("ovf: namespace not declared on envelope")

	// ErrNoFileReference indicates the descriptor references no disk file.
	ErrNoFileReference = errors.New("ovf: descriptor has no file reference")
)
