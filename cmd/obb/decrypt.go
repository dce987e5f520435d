package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opticalblackbox/obb-go"
	"github.com/opticalblackbox/obb-go/keys"
)

func decryptCmd() *cobra.Command {
	var (
		privateKey string
		vendorKey  string
		password   string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "decrypt FILE",
		Short: "Verify and decrypt an .obb envelope",
		Long: `Verify and decrypt an .obb envelope.

The vendor signature is checked first; decryption only happens on an
authentic envelope. The recovered surface group is written as JSON to
--out, or to stdout when no output path is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platformPriv, err := keys.LoadPrivateKey(privateKey, password)
			if err != nil {
				return fmt.Errorf("loading platform key: %w", err)
			}
			vendorPub, err := keys.LoadPublicKey(vendorKey)
			if err != nil {
				return fmt.Errorf("loading vendor key: %w", err)
			}

			meta, group, err := obb.ReadFile(args[0], platformPriv, vendorPub)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(group, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')

			if outPath == "" {
				os.Stdout.Write(out)
			} else {
				if err := writeFileAtomic(outPath, out, 0o600); err != nil {
					return fmt.Errorf("writing %s: %w", outPath, err)
				}
				printSuccess("Decrypted %s", args[0])
				printField("Vendor", "%s", meta.VendorID)
				printField("Name", "%s", meta.Name)
				printField("Surfaces", "%d", group.NumSurfaces())
				printField("Output", "%s", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&privateKey, "private-key", "k", "", "Platform private key PEM (required)")
	cmd.Flags().StringVarP(&vendorKey, "vendor-key", "s", "", "Vendor public key PEM for signature verification (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password for the private key, if protected")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the decrypted group JSON here instead of stdout")
	cmd.MarkFlagRequired("private-key")
	cmd.MarkFlagRequired("vendor-key")
	return cmd
}
