package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const testDescriptor = `<?xml version="1.0" encoding="UTF-8"?>
<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1" xmlns:ovf="http://schemas.dmtf.org/ovf/envelope/1" xmlns:vmw="http://www.vmware.com/schema/ovf" ovf:version="1.0">
  <References>
    <File ovf:href="disk-1.vmdk" ovf:id="file1" ovf:size="1024"/>
  </References>
  <VirtualSystem ovf:id="cli-test">
    <ProductSection>
      <Info>Product information</Info>
      <Product>CLI Test Appliance</Product>
      <Version>1.0.0</Version>
      <FullVersion>1.0.0</FullVersion>
    </ProductSection>
    <AnnotationSection>
      <Info>Annotation</Info>
      <Annotation>stock annotation</Annotation>
    </AnnotationSection>
    <VirtualHardwareSection>
      <Info>Hardware</Info>
    </VirtualHardwareSection>
  </VirtualSystem>
</Envelope>
`

// writeTestPackage creates a descriptor, manifest and fake disk in a fresh
// temp dir and returns the descriptor path.
func writeTestPackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	ovfPath := filepath.Join(dir, "appliance.ovf")
	if err := os.WriteFile(ovfPath, []byte(testDescriptor), 0o644); err != nil {
		t.Fatalf("failed to write descriptor: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "disk-1.vmdk"), []byte("disk\n"), 0o644); err != nil {
		t.Fatalf("failed to write disk: %v", err)
	}

	mf := "SHA1(appliance.ovf)= 0000000000000000000000000000000000000000\n" +
		"SHA256(appliance.ovf)= 0000000000000000000000000000000000000000000000000000000000000000\n" +
		"SHA256(disk-1.vmdk)= e4afa146b6cac84107134c69a12c93b983d4a09d5f628f325d11aa7347a8e895\n"
	if err := os.WriteFile(filepath.Join(dir, "appliance.mf"), []byte(mf), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return ovfPath
}

// resetFlags restores the global and set-command flags to their defaults so
// tests don't leak state into each other.
func resetFlags(t *testing.T) {
	t.Helper()
	quiet = false
	verbose = false
	jsonOut = false

	setCmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
	setProduct = ""
	setVersion = ""
	setAnnotation = ""
	setPropKey = ""
	setPropValue = ""
	setPropValueFile = ""
	setPropType = "string"
	setPropJSON = false
	setPropComment = false
	setPropUserCfg = false
	setExtraConfigs = nil
	setExtraRequired = false
	setShowDiff = false
	setDryRun = false
	setCreateOVA = false
}

// setFlag sets a set-command flag the way cobra would, marking it changed.
func setFlag(t *testing.T, name, value string) {
	t.Helper()
	if err := setCmd.Flags().Set(name, value); err != nil {
		t.Fatalf("failed to set flag %s: %v", name, err)
	}
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
