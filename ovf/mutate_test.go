package ovf

import (
	"errors"
	"strings"
	"testing"
)

// countProperties returns how many Property nodes carry the given key.
func countProperties(e *Editor, key string) int {
	n := 0
	for _, p := range e.Properties() {
		if p.Key == key {
			n++
		}
	}
	return n
}

func TestSetProductProperty_Idempotent(t *testing.T) {
	ed := mustOpen(t)

	for i := 0; i < 3; i++ {
		if err := ed.SetProductProperty("guestinfo.hostname", "vm-1", nil); err != nil {
			t.Fatalf("SetProductProperty() failed: %v", err)
		}
	}

	if got := countProperties(ed, "guestinfo.hostname"); got != 1 {
		t.Errorf("property count = %d, want 1", got)
	}
}

func TestSetProductProperty_ReplacesValue(t *testing.T) {
	ed := mustOpen(t)

	if err := ed.SetProductProperty("k", "first", nil); err != nil {
		t.Fatalf("SetProductProperty() failed: %v", err)
	}
	if err := ed.SetProductProperty("k", "second", nil); err != nil {
		t.Fatalf("SetProductProperty() failed: %v", err)
	}

	if got := countProperties(ed, "k"); got != 1 {
		t.Fatalf("property count = %d, want 1", got)
	}
	if got := ed.Properties()[0].Value; got != "second" {
		t.Errorf("property value = %q, want %q", got, "second")
	}
}

func TestSetProductProperty_Defaults(t *testing.T) {
	ed := mustOpen(t)

	if err := ed.SetProductProperty("k", "v", nil); err != nil {
		t.Fatalf("SetProductProperty() failed: %v", err)
	}

	p := ed.Properties()[0]
	if p.Type != "string" {
		t.Errorf("type = %q, want %q", p.Type, "string")
	}
	if p.UserConfigurable {
		t.Error("userConfigurable = true, want false")
	}
}

func TestSetProductProperty_Comment(t *testing.T) {
	ed := mustOpen(t)

	err := ed.SetProductProperty("k", "opaque-blob", &PropertyOptions{Comment: true})
	if err != nil {
		t.Fatalf("SetProductProperty() failed: %v", err)
	}

	text, err := ToXML(ed.doc)
	if err != nil {
		t.Fatalf("ToXML() failed: %v", err)
	}
	if !strings.Contains(text, "<!--value=opaque-blob-->") {
		t.Errorf("serialization missing value comment:\n%s", text)
	}
}

func TestSetProductProperty_EmptyKey(t *testing.T) {
	ed := mustOpen(t)
	if err := ed.SetProductProperty("", "v", nil); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("error = %v, want ErrEmptyKey", err)
	}
}

func TestSetExtraConfig_Replaces(t *testing.T) {
	ed := mustOpen(t)

	// The fixture already has firmware=efi; overwrite it.
	if err := ed.SetExtraConfig("firmware", "bios", true); err != nil {
		t.Fatalf("SetExtraConfig() failed: %v", err)
	}

	ecs := ed.ExtraConfigs()
	if len(ecs) != 1 {
		t.Fatalf("extra config count = %d, want 1", len(ecs))
	}
	if ecs[0].Value != "bios" || !ecs[0].Required {
		t.Errorf("extra config = %+v, want value=bios required=true", ecs[0])
	}
}

func TestSetExtraConfig_EmptyKey(t *testing.T) {
	ed := mustOpen(t)
	if err := ed.SetExtraConfig("", "v", false); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("error = %v, want ErrEmptyKey", err)
	}
}

func TestSetExtraConfig_NamespaceNotDeclared(t *testing.T) {
	content := strings.Replace(testDescriptor,
		` xmlns:vmw="http://www.vmware.com/schema/ovf"`, "", 1)
	content = strings.Replace(content,
		`<vmw:ExtraConfig vmw:key="firmware" vmw:value="efi" ovf:required="false"/>`, "", 1)
	path := writeDescriptor(t, t.TempDir(), "novmw.ovf", content)

	ed, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := ed.SetExtraConfig("k", "v", false); !errors.Is(err, ErrNamespaceNotDeclared) {
		t.Errorf("error = %v, want ErrNamespaceNotDeclared", err)
	}
}

func TestSetAnnotation_Replaces(t *testing.T) {
	ed := mustOpen(t)

	if err := ed.SetAnnotation("first"); err != nil {
		t.Fatalf("SetAnnotation() failed: %v", err)
	}
	if err := ed.SetAnnotation("second"); err != nil {
		t.Fatalf("SetAnnotation() failed: %v", err)
	}

	if got := ed.Annotation(); got != "second" {
		t.Errorf("annotation = %q, want %q", got, "second")
	}
	if n := len(childrenNS(ed.annotation, NamespaceOVF, "Annotation")); n != 1 {
		t.Errorf("annotation node count = %d, want 1", n)
	}
}

func TestSetVersion_SetsBoth(t *testing.T) {
	ed := mustOpen(t)

	if err := ed.SetVersion("1.2.3"); err != nil {
		t.Fatalf("SetVersion() failed: %v", err)
	}
	if ed.Version() != "1.2.3" || ed.FullVersion() != "1.2.3" {
		t.Errorf("version = %q / %q, want 1.2.3 for both", ed.Version(), ed.FullVersion())
	}
}

func TestSetVersion_MissingFullVersion(t *testing.T) {
	content := strings.Replace(testDescriptor, "<FullVersion>1.0.0</FullVersion>\n", "", 1)
	path := writeDescriptor(t, t.TempDir(), "nofull.ovf", content)

	ed, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := ed.SetVersion("2.0.0"); !errors.Is(err, ErrMissingElement) {
		t.Errorf("error = %v, want ErrMissingElement", err)
	}
}

func TestSetProduct(t *testing.T) {
	ed := mustOpen(t)

	if err := ed.SetProduct("Renamed Appliance"); err != nil {
		t.Fatalf("SetProduct() failed: %v", err)
	}
	if got := ed.Product(); got != "Renamed Appliance" {
		t.Errorf("product = %q, want %q", got, "Renamed Appliance")
	}
}

func TestMutators_AnyOrder(t *testing.T) {
	ed := mustOpen(t)

	steps := []func() error{
		func() error { return ed.SetAnnotation("a") },
		func() error { return ed.SetVersion("9.9.9") },
		func() error { return ed.SetProductProperty("k", "v", nil) },
		func() error { return ed.SetExtraConfig("x", "y", false) },
		func() error { return ed.SetProduct("p") },
		func() error { return ed.SetAnnotation("a") },
		func() error { return ed.SetProductProperty("k", "v", nil) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}

	if got := countProperties(ed, "k"); got != 1 {
		t.Errorf("property count = %d, want 1", got)
	}
	if got := ed.Annotation(); got != "a" {
		t.Errorf("annotation = %q, want %q", got, "a")
	}
}
