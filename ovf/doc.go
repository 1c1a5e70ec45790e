// Package ovf edits metadata embedded in OVF virtual machine descriptors.
//
// # Overview
//
// An Editor owns a parsed descriptor for its lifetime. It resolves the four
// subtrees the tool cares about (ProductSection, VirtualHardwareSection,
// AnnotationSection and the disk File reference) once at load time, exposes
// replace-semantics mutators on them, and serializes the whole document back
// to a canonical pretty-printed form. Committing rewrites the descriptor in
// place and refreshes the matching digest lines in the sidecar manifest.
//
// # Usage
//
// Typical flow:
//
//	ed, err := ovf.Open("appliance.ovf")
//	if err != nil {
//		return err
//	}
//	ed.SetVersion("1.2.3")
//	ed.SetProductProperty("guestinfo.userdata", payload, nil)
//
//	diff, _ := ed.Diff()
//	fmt.Print(diff)
//
//	if err := ed.Commit(); err != nil {
//		return err
//	}
//
// Mutators are idempotent: setting the same key twice leaves a single node
// behind, and calls may be repeated in any order. Commit is not transactional;
// if the manifest write fails after the descriptor write succeeded the pair is
// left inconsistent and needs manual recovery.
//
// An Editor is not safe for concurrent use.
package ovf
