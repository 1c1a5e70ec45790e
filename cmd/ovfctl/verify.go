package main

import (
	"fmt"
	"path/filepath"

	"github.com/joshuapare/ovfkit/manifest"
	"github.com/joshuapare/ovfkit/ovf"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file.ovf|file.ova>",
		Short: "Check manifest checksums against package contents",
		Long: `The verify command recomputes the digest of every file listed in the
sidecar manifest and compares it against the recorded value.

Example:
  ovfctl verify appliance.ovf
  ovfctl verify appliance.ova --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

func runVerify(args []string) error {
	t, err := resolveTarget(args[0])
	if err != nil {
		return err
	}
	defer t.cleanup()

	mfPath := filepath.Join(filepath.Dir(t.ovfPath), ovf.ManifestName(filepath.Base(t.ovfPath)))
	printVerbose("Loading manifest: %s\n", mfPath)

	m, err := manifest.Load(mfPath)
	if err != nil {
		return err
	}

	results := m.Verify(filepath.Dir(t.ovfPath))
	failed := 0

	if jsonOut {
		type entryResult struct {
			Algorithm string `json:"algorithm"`
			Filename  string `json:"filename"`
			Expected  string `json:"expected"`
			Actual    string `json:"actual,omitempty"`
			OK        bool   `json:"ok"`
			Error     string `json:"error,omitempty"`
		}
		out := make([]entryResult, 0, len(results))
		for _, r := range results {
			er := entryResult{
				Algorithm: string(r.Entry.Algorithm),
				Filename:  r.Entry.Filename,
				Expected:  r.Entry.Digest,
				Actual:    r.Actual,
				OK:        r.OK,
			}
			if r.Err != nil {
				er.Error = r.Err.Error()
				failed++
			} else if !r.OK {
				failed++
			}
			out = append(out, er)
		}
		if err := printJSON(out); err != nil {
			return err
		}
	} else {
		printInfo("\nManifest: %s\n", mfPath)
		for _, r := range results {
			switch {
			case r.Err != nil:
				printError("%s(%s): %v\n", r.Entry.Algorithm, r.Entry.Filename, r.Err)
				failed++
			case !r.OK:
				printError("%s(%s): digest mismatch (manifest %s, actual %s)\n",
					r.Entry.Algorithm, r.Entry.Filename, r.Entry.Digest, r.Actual)
				failed++
			default:
				printInfo("  OK %s(%s)\n", r.Entry.Algorithm, r.Entry.Filename)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d manifest entries failed verification", failed, len(results))
	}
	if !jsonOut {
		printInfo("\n✓ All %d manifest entries verified\n", len(results))
	}
	return nil
}
