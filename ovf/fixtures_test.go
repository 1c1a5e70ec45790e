package ovf

import (
	"os"
	"path/filepath"
	"testing"
)

// testDescriptor is a minimal but representative appliance descriptor: one
// disk reference, one VirtualSystem with product, annotation and hardware
// sections, OVF as both the default namespace and the ovf prefix, plus the
// vmw vendor namespace.
const testDescriptor = `<?xml version="1.0" encoding="UTF-8"?>
<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1" xmlns:ovf="http://schemas.dmtf.org/ovf/envelope/1" xmlns:vmw="http://www.vmware.com/schema/ovf" xmlns:rasd="http://schemas.dmtf.org/wbem/wscim/1/cim-schema/2/CIM_ResourceAllocationSettingData" ovf:version="1.0">
  <References>
    <File ovf:href="disk-1.vmdk" ovf:id="file1" ovf:size="1024"/>
  </References>
  <VirtualSystem ovf:id="test-appliance">
    <ProductSection>
      <Info>Information about the installed software</Info>
      <Product>Test Appliance</Product>
      <Vendor>Example Corp</Vendor>
      <Version>1.0.0</Version>
      <FullVersion>1.0.0</FullVersion>
    </ProductSection>
    <AnnotationSection>
      <Info>A human-readable annotation</Info>
      <Annotation>Original annotation</Annotation>
    </AnnotationSection>
    <VirtualHardwareSection>
      <Info>Virtual hardware requirements</Info>
      <Item>
        <rasd:ElementName>2 virtual CPUs</rasd:ElementName>
        <rasd:InstanceID>1</rasd:InstanceID>
        <rasd:ResourceType>3</rasd:ResourceType>
        <rasd:VirtualQuantity>2</rasd:VirtualQuantity>
      </Item>
      <vmw:ExtraConfig vmw:key="firmware" vmw:value="efi" ovf:required="false"/>
    </VirtualHardwareSection>
  </VirtualSystem>
</Envelope>
`

// writeDescriptor writes the stock test descriptor (or custom content) into
// dir and returns its path.
func writeDescriptor(t *testing.T, dir, name, content string) string {
	t.Helper()
	if content == "" {
		content = testDescriptor
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write descriptor: %v", err)
	}
	return path
}

// writePackage lays out a descriptor, a manifest carrying stale digests for
// it, and a small fake disk image. Returns the descriptor path.
func writePackage(t *testing.T, dir string) string {
	t.Helper()
	path := writeDescriptor(t, dir, "appliance.ovf", "")

	disk := filepath.Join(dir, "disk-1.vmdk")
	if err := os.WriteFile(disk, []byte("not really a disk\n"), 0o644); err != nil {
		t.Fatalf("failed to write disk: %v", err)
	}

	mf := "SHA1(appliance.ovf)= 0000000000000000000000000000000000000000\n" +
		"SHA256(appliance.ovf)= 0000000000000000000000000000000000000000000000000000000000000000\n" +
		"SHA256(disk-1.vmdk)= a20a74c5878358e249631cfb973b1fce2d581e4ece1e89d8d8ae88a38a7e6351\n"
	if err := os.WriteFile(filepath.Join(dir, "appliance.mf"), []byte(mf), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

// mustOpen opens a freshly written stock package in its own temp dir.
func mustOpen(t *testing.T) *Editor {
	t.Helper()
	path := writePackage(t, t.TempDir())
	ed, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return ed
}
