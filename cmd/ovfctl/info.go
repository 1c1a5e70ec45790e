package main

import (
	"errors"

	"github.com/joshuapare/ovfkit/ovf"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file.ovf|file.ova>",
		Short: "Show descriptor metadata",
		Long: `The info command loads a descriptor (extracting OVA archives to a
temporary directory first) and reports its product metadata, annotation,
disk reference and custom properties.

Example:
  ovfctl info appliance.ovf
  ovfctl info appliance.ova --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

func runInfo(args []string) error {
	t, err := resolveTarget(args[0])
	if err != nil {
		return err
	}
	defer t.cleanup()

	printVerbose("Opening descriptor: %s\n", t.ovfPath)
	ed, err := ovf.Open(t.ovfPath)
	if err != nil {
		return err
	}

	disk, err := ed.DiskPath()
	if err != nil && !errors.Is(err, ovf.ErrNoFileReference) {
		return err
	}

	if jsonOut {
		result := map[string]interface{}{
			"file":         args[0],
			"product":      ed.Product(),
			"version":      ed.Version(),
			"full_version": ed.FullVersion(),
			"annotation":   ed.Annotation(),
			"properties":   ed.Properties(),
			"extra_config": ed.ExtraConfigs(),
		}
		if disk != "" {
			result["disk"] = disk
		}
		return printJSON(result)
	}

	printInfo("\nDescriptor: %s\n", t.ovfPath)
	printInfo("  Product: %s\n", ed.Product())
	printInfo("  Version: %s\n", ed.Version())
	printInfo("  FullVersion: %s\n", ed.FullVersion())
	printInfo("  Annotation: %s\n", ed.Annotation())
	if disk != "" {
		printInfo("  Disk: %s\n", disk)
	}

	if props := ed.Properties(); len(props) > 0 {
		printInfo("\nProperties:\n")
		for _, p := range props {
			printInfo("  %s = %s (type=%s, userConfigurable=%t)\n",
				p.Key, p.Value, p.Type, p.UserConfigurable)
		}
	}
	if ecs := ed.ExtraConfigs(); len(ecs) > 0 {
		printInfo("\nExtraConfig:\n")
		for _, ec := range ecs {
			printInfo("  %s = %s (required=%t)\n", ec.Key, ec.Value, ec.Required)
		}
	}
	return nil
}
