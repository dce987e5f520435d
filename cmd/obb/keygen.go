package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opticalblackbox/obb-go/keys"
)

func keygenCmd() *cobra.Command {
	var (
		outDir   string
		name     string
		password string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a P-256 key pair for signing and decryption",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keys.Generate()
			if err != nil {
				return err
			}

			privPath := filepath.Join(outDir, name+".key")
			pubPath := filepath.Join(outDir, name+".pub")

			log.WithField("path", privPath).Debug("writing private key")
			if err := keys.SavePrivateKey(privPath, key, password); err != nil {
				return fmt.Errorf("saving private key: %w", err)
			}
			if err := keys.SavePublicKey(pubPath, &key.PublicKey); err != nil {
				return fmt.Errorf("saving public key: %w", err)
			}

			printSuccess("Generated key pair")
			printField("Private key", "%s", privPath)
			printField("Public key", "%s", pubPath)
			if password == "" {
				printInfo("The private key is NOT password protected. Use --password to protect it.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVarP(&name, "name", "n", "vendor", "Base name for the key files")
	cmd.Flags().StringVar(&password, "password", "", "Password to protect the private key")
	return cmd
}
