package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opticalblackbox/obb-go"
	"github.com/opticalblackbox/obb-go/keys"
	"github.com/opticalblackbox/obb-go/optics"
	"github.com/opticalblackbox/obb-go/zmx"
)

func createCmd() *cobra.Command {
	var (
		privateKey  string
		platformKey string
		vendorID    string
		name        string
		description string
		partNumber  string
		password    string
		manifest    string
		force       bool
	)
	cmd := &cobra.Command{
		Use:   "create INPUT OUTPUT",
		Short: "Create an encrypted .obb envelope from a Zemax design",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			if !strings.HasSuffix(strings.ToLower(output), ".obb") {
				output += ".obb"
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("output file exists: %s (use --force to overwrite)", output)
			}

			log.WithField("path", privateKey).Debug("loading vendor key")
			vendorKey, err := keys.LoadPrivateKey(privateKey, password)
			if err != nil {
				return fmt.Errorf("loading vendor key: %w", err)
			}
			recipient, err := keys.LoadPublicKey(platformKey)
			if err != nil {
				return fmt.Errorf("loading platform key: %w", err)
			}

			printInfo("Parsing %s...", input)
			group, err := zmx.ParseFile(input)
			if err != nil {
				return err
			}
			printField("Surfaces", "%d", group.NumSurfaces())

			if manifest != "" {
				if err := applyVisibilityManifest(manifest, group); err != nil {
					return err
				}
			}

			printInfo("Computing optical properties...")
			var opts []optics.Option
			if description != "" {
				opts = append(opts, optics.WithDescription(description))
			}
			if partNumber != "" {
				opts = append(opts, optics.WithPartNumber(partNumber))
			}
			meta, err := optics.ExtractMetadata(group, vendorID, name, opts...)
			if err != nil {
				return err
			}
			printField("EFL", "%.2f mm", float64(meta.EFLmm))
			printField("NA", "%.4f", meta.NA)

			var buf bytes.Buffer
			written, err := obb.Write(&buf, group, meta, vendorKey, recipient)
			if err != nil {
				return err
			}
			if err := writeFileAtomic(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			printSuccess("Created %s (%d bytes)", output, buf.Len())
			printField("Vendor", "%s", written.VendorID)
			printField("Signature", "%s...", truncate(written.Signature, 24))
			return nil
		},
	}
	cmd.Flags().StringVarP(&privateKey, "private-key", "k", "", "Vendor private key PEM (required)")
	cmd.Flags().StringVarP(&platformKey, "platform-key", "r", "", "Platform public key PEM, the encryption recipient (required)")
	cmd.Flags().StringVarP(&vendorID, "vendor-id", "v", "", "Vendor identifier, 3-50 lowercase chars (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Component name (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Component description")
	cmd.Flags().StringVarP(&partNumber, "part-number", "p", "", "Vendor part number")
	cmd.Flags().StringVar(&password, "password", "", "Password for the private key, if protected")
	cmd.Flags().StringVar(&manifest, "visibility", "", "YAML manifest assigning per-surface visibility")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing output file")
	cmd.MarkFlagRequired("private-key")
	cmd.MarkFlagRequired("platform-key")
	cmd.MarkFlagRequired("vendor-id")
	cmd.MarkFlagRequired("name")
	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
