package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/ovfkit/ova"
	"github.com/joshuapare/ovfkit/ovf"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	setProduct    string
	setVersion    string
	setAnnotation string

	setPropKey       string
	setPropValue     string
	setPropValueFile string
	setPropType      string
	setPropJSON      bool
	setPropComment   bool
	setPropUserCfg   bool

	setExtraConfigs  []string
	setExtraRequired bool

	setShowDiff  bool
	setDryRun    bool
	setCreateOVA bool
)

var setCmd *cobra.Command

func init() {
	cmd := newSetCmd()
	cmd.Flags().StringVar(&setProduct, "product", "", "Set the product name")
	cmd.Flags().StringVar(&setVersion, "version", "", "Set Version and FullVersion")
	cmd.Flags().StringVar(&setAnnotation, "annotation", "", "Set the annotation text")
	cmd.Flags().StringVar(&setPropKey, "property-key", "", "Product property key")
	cmd.Flags().StringVar(&setPropValue, "property-value", "", "Product property value")
	cmd.Flags().
		StringVar(&setPropValueFile, "property-value-file", "", "Read the product property value from a file")
	cmd.Flags().StringVar(&setPropType, "property-type", "string", "Product property type attribute")
	cmd.Flags().BoolVar(&setPropJSON, "property-json", false, "Validate and compact the property value as JSON")
	cmd.Flags().
		BoolVar(&setPropComment, "property-comment", false, "Echo the property value as an adjacent XML comment")
	cmd.Flags().
		BoolVar(&setPropUserCfg, "user-configurable", false, "Mark the property as user configurable")
	cmd.Flags().
		StringArrayVar(&setExtraConfigs, "extra-config", nil, "Extra-config entry as key=value (repeatable)")
	cmd.Flags().BoolVar(&setExtraRequired, "extra-config-required", false, "Mark extra-config entries as required")
	cmd.Flags().BoolVar(&setShowDiff, "diff", false, "Print a unified diff of the changes")
	cmd.Flags().BoolVar(&setDryRun, "dry-run", false, "Do not write changes to disk")
	cmd.Flags().BoolVar(&setCreateOVA, "create-ova", false, "Repackage into an OVA afterwards")
	cmd.MarkFlagsMutuallyExclusive("property-value", "property-value-file")
	setCmd = cmd
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <file.ovf|file.ova>",
		Short: "Edit descriptor metadata and refresh the manifest",
		Long: `The set command applies metadata edits to an OVF descriptor and rewrites
the matching checksum lines in the sidecar manifest. OVA inputs are
extracted to a staging directory first; pass --create-ova to repackage
the archive after editing.

Example:
  ovfctl set appliance.ovf --version 1.2.3
  ovfctl set appliance.ova --annotation "Built nightly" --create-ova
  ovfctl set appliance.ovf --property-key guestinfo.userdata --property-value-file cloud-init.yaml
  ovfctl set appliance.ovf --extra-config disk.enableUUID=TRUE --diff --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args)
		},
	}
	return cmd
}

func runSet(args []string) error {
	t, err := resolveTarget(args[0])
	if err != nil {
		return err
	}

	// The staging directory goes away on every exit, including error
	// returns, unless a committed-but-not-repackaged edit needs it kept.
	keepStage := false
	defer func() {
		if !keepStage {
			t.cleanup()
		}
	}()

	printVerbose("Opening descriptor: %s\n", t.ovfPath)
	ed, err := ovf.Open(t.ovfPath)
	if err != nil {
		return err
	}

	applied, err := applyMutations(ed)
	if err != nil {
		return err
	}

	if setShowDiff {
		diff, err := ed.Diff()
		if err != nil {
			return fmt.Errorf("failed to diff descriptor: %w", err)
		}
		fmt.Print(diff)
	}

	committed := false
	if !setDryRun {
		if err := ed.Commit(); err != nil {
			return fmt.Errorf("failed to commit changes: %w", err)
		}
		committed = true
	}

	ovaPath := ""
	if setCreateOVA && committed {
		if ovaPath, err = repack(t, ed); err != nil {
			return err
		}
	} else if t.isArchive && committed {
		// Without repackaging the edits live only in the staging
		// directory, so keep it and say where it is.
		keepStage = true
		printInfo("Edited descriptor left in %s\n", t.stageDir)
	}

	if jsonOut {
		result := map[string]interface{}{
			"file":      args[0],
			"mutations": applied,
			"committed": committed,
			"dry_run":   setDryRun,
		}
		if ovaPath != "" {
			result["ova"] = ovaPath
		}
		return printJSON(result)
	}

	for _, m := range applied {
		printInfo("  %s\n", m)
	}
	if committed {
		printInfo("\n✓ Descriptor and manifest updated\n")
	} else {
		printInfo("\nDry run, nothing written\n")
	}
	return nil
}

// applyMutations maps the changed flags onto editor operations and returns a
// description of each one applied, in order.
func applyMutations(ed *ovf.Editor) ([]string, error) {
	var applied []string
	flags := setCmd.Flags()

	if flags.Changed("annotation") {
		if err := ed.SetAnnotation(setAnnotation); err != nil {
			return nil, err
		}
		applied = append(applied, "annotation")
	}
	if flags.Changed("product") {
		if err := ed.SetProduct(setProduct); err != nil {
			return nil, err
		}
		applied = append(applied, fmt.Sprintf("product=%s", setProduct))
	}
	if flags.Changed("version") {
		if err := ed.SetVersion(setVersion); err != nil {
			return nil, err
		}
		applied = append(applied, fmt.Sprintf("version=%s", setVersion))
	}

	if setPropKey != "" {
		value, err := resolvePropertyValue(flags)
		if err != nil {
			return nil, err
		}
		opts := &ovf.PropertyOptions{
			Type:             setPropType,
			UserConfigurable: setPropUserCfg,
			Comment:          setPropComment,
		}
		if err := ed.SetProductProperty(setPropKey, value, opts); err != nil {
			return nil, err
		}
		applied = append(applied, fmt.Sprintf("property %s", setPropKey))
	} else if flags.Changed("property-value") || flags.Changed("property-value-file") {
		return nil, errors.New("property value specified, but no --property-key")
	}

	for _, kv := range setExtraConfigs {
		key, value, err := splitKeyValue(kv)
		if err != nil {
			return nil, err
		}
		if err := ed.SetExtraConfig(key, value, setExtraRequired); err != nil {
			return nil, err
		}
		applied = append(applied, fmt.Sprintf("extra-config %s", key))
	}

	return applied, nil
}

func resolvePropertyValue(flags *pflag.FlagSet) (string, error) {
	var value string
	switch {
	case flags.Changed("property-value"):
		value = setPropValue
	case flags.Changed("property-value-file"):
		data, err := os.ReadFile(setPropValueFile)
		if err != nil {
			return "", fmt.Errorf("failed to read property value file: %w", err)
		}
		value = string(data)
	default:
		return "", errors.New("--property-key specified, but no value")
	}

	if setPropJSON {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(value)); err != nil {
			return "", fmt.Errorf("property value is not valid JSON: %w", err)
		}
		value = buf.String()
	}
	return value, nil
}

func splitKeyValue(kv string) (string, string, error) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("expected key=value, got %q", kv)
}

// repack rebuilds an OVA after a committed edit. For archive inputs every
// extracted file goes back in, descriptor first; for bare descriptors the
// archive is created next to the input from the descriptor, its disk and
// the manifest.
func repack(t *target, ed *ovf.Editor) (string, error) {
	var ovaPath string
	var files []string

	if t.isArchive {
		ovaPath = t.input
		files = append(files, t.ovfPath)
		for _, p := range t.extracted {
			if p != t.ovfPath {
				files = append(files, p)
			}
		}
	} else {
		ovaPath = filepath.Join(filepath.Dir(t.input), t.name+".ova")
		files = append(files, t.ovfPath)
		if disk, err := ed.DiskPath(); err == nil {
			files = append(files, disk)
		} else if !errors.Is(err, ovf.ErrNoFileReference) {
			return "", err
		}
		files = append(files, ed.ManifestPath())
	}

	printInfo("creating OVA %s\n", ovaPath)
	for _, p := range files {
		printVerbose("adding %s to OVA\n", p)
	}
	if err := ova.Pack(ovaPath, files); err != nil {
		return "", err
	}
	return ovaPath, nil
}
