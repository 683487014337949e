// Command aletheia issues identities, signs payloads into .alx envelopes,
// and verifies them against a set of trusted roots.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "aletheia",
		Short:         "Issue identities and sign or verify content-authenticity envelopes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newCAInitCmd(),
		newCertIssueCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newInfoCmd(),
		newRevokeCmd(),
		newListCmd(),
	)
	return root
}

func main() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func resolveDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envVal := os.Getenv("ALETHEIA_DATA_DIR"); envVal != "" {
		return envVal
	}
	return "./aletheia-data"
}
