package main

import (
	"testing"
)

func TestInfoCommand(t *testing.T) {
	tests := []struct {
		name        string
		wantJSON    bool
		wantContain []string
	}{
		{
			name: "text output",
			wantContain: []string{
				"CLI Test Appliance",
				"1.0.0",
				"stock annotation",
				"disk-1.vmdk",
			},
		},
		{
			name:     "json output",
			wantJSON: true,
			wantContain: []string{
				"CLI Test Appliance",
				"stock annotation",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.wantJSON

			path := writeTestPackage(t)
			output, err := captureOutput(t, func() error {
				return runInfo([]string{path})
			})
			if err != nil {
				t.Fatalf("runInfo() failed: %v\nOutput: %s", err, output)
			}

			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestInfoCommand_MissingFile(t *testing.T) {
	resetFlags(t)
	_, err := captureOutput(t, func() error {
		return runInfo([]string{"/nonexistent/appliance.ovf"})
	})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
