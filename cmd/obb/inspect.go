package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/opticalblackbox/obb-go"
)

func inspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the public metadata of an .obb envelope",
		Long: `Show the public metadata of an .obb envelope.

No keys are needed: inspection reads only the cleartext section and
performs no signature verification or decryption.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := obb.ReadMetadataFile(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			meta := info.Metadata
			printInfo("%s", args[0])
			printField("Vendor", "%s", meta.VendorID)
			printField("Name", "%s", meta.Name)
			if meta.PartNumber != "" {
				printField("Part number", "%s", meta.PartNumber)
			}
			printField("EFL", "%s", formatMM(float64(meta.EFLmm)))
			printField("BFL", "%s", formatMM(float64(meta.BFLmm)))
			printField("NA", "%.4f", meta.NA)
			printField("Diameter", "%.2f mm", meta.DiameterMm)
			printField("Spectral range", "%s", meta.SpectralRangeString())
			printField("Surfaces", "%d", meta.NumSurfaces)
			if info.Mode == obb.ModeSelective {
				printField("Visibility", "%d public, %d encrypted, %d redacted",
					info.PublicSurfaces, info.EncryptedSurfaces, info.RedactedSurfaces)
			} else {
				printField("Visibility", "all surfaces encrypted")
			}
			printField("Ciphersuite", "%s", info.Ciphersuite)
			if meta.CreatedAt != nil {
				printField("Created", "%s", meta.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			}
			if meta.HasSignature() {
				printField("Signature", "%s...", truncate(meta.Signature, 24))
			}
			if meta.Description != "" {
				printField("Description", "%s", meta.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func formatMM(v float64) string {
	if math.IsInf(v, 0) {
		return "afocal"
	}
	return fmt.Sprintf("%.2f mm", v)
}
