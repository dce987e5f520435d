// Command obb packages optical designs into encrypted .obb envelopes
// and unpacks them again: key generation, envelope creation from Zemax
// files, metadata inspection and decryption.
package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const envPrefix = "OBB_"

var log = logrus.New()

func main() {
	// A .env file in the working directory supplies flag defaults;
	// absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "obb",
		Short:        "Create and inspect encrypted optical design envelopes",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(decryptCmd())

	for _, command := range rootCmd.Commands() {
		setFlagsFromEnv(envPrefix, command.Flags())
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setFlagsFromEnv fills unset flags from OBB_* environment variables,
// so OBB_PRIVATE_KEY backs --private-key and so on. Flags given on the
// command line win.
func setFlagsFromEnv(prefix string, fs *pflag.FlagSet) {
	set := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) {
		set[f.Name] = true
	})
	fs.VisitAll(func(f *pflag.Flag) {
		if set[f.Name] {
			return
		}
		name := prefix + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")
		if v, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(v)
		}
	})
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
}
