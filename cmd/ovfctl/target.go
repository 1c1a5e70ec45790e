package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuapare/ovfkit/ova"
)

// target resolves a command-line path, which may be a bare descriptor or an
// OVA archive, to the descriptor a command should operate on. Archives are
// extracted into a staging directory next to the input.
type target struct {
	input     string
	name      string // input basename without extension
	ovfPath   string
	isArchive bool
	stageDir  string   // "" for bare descriptors
	extracted []string // extracted file paths, archive order
}

// resolveTarget inspects path and extracts it when it is a tar archive.
func resolveTarget(path string) (*target, error) {
	t := &target{
		input: path,
		name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	isTar, err := ova.IsArchive(path)
	if err != nil {
		return nil, err
	}
	if !isTar {
		t.ovfPath = path
		return t, nil
	}

	printVerbose("Path is a tar archive, treating as OVA\n")
	stageDir, err := os.MkdirTemp(filepath.Dir(path), ".ovfctl-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	extracted, err := ova.Extract(path, stageDir)
	if err != nil {
		os.RemoveAll(stageDir)
		return nil, err
	}
	printVerbose("Extracted OVA to %s\n", stageDir)

	t.isArchive = true
	t.stageDir = stageDir
	t.extracted = extracted
	t.ovfPath = ova.DescriptorPath(stageDir, t.name)

	if _, err := os.Stat(t.ovfPath); err != nil {
		// Archive member names need not match the archive name; fall
		// back to the only .ovf that was extracted.
		t.ovfPath = ""
		for _, p := range extracted {
			if strings.EqualFold(filepath.Ext(p), ".ovf") {
				if t.ovfPath != "" {
					os.RemoveAll(stageDir)
					return nil, fmt.Errorf("archive %s contains more than one descriptor", path)
				}
				t.ovfPath = p
			}
		}
		if t.ovfPath == "" {
			os.RemoveAll(stageDir)
			return nil, fmt.Errorf("archive %s contains no .ovf descriptor", path)
		}
	}
	return t, nil
}

// cleanup removes the staging directory, if any.
func (t *target) cleanup() {
	if t.stageDir != "" {
		os.RemoveAll(t.stageDir)
	}
}
