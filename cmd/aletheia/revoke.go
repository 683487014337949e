package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aurel3d/aletheia/store"
)

func newRevokeCmd() *cobra.Command {
	var dataDir, serialHex, reason string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Add a certificate serial to this identity's revocation set",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveDataDir(dataDir)
			if serialHex == "" {
				return fmt.Errorf("--serial is required")
			}
			if reason == "" {
				reason = "unspecified"
			}

			if err := store.Revoke(dir, serialHex, reason); err != nil {
				return err
			}

			log.WithField("serial", serialHex).Info("certificate revoked")
			fmt.Println("Certificate revoked successfully.")
			fmt.Printf("  Serial: %s\n", serialHex)
			fmt.Printf("  Reason: %s\n", reason)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "identity data directory")
	cmd.Flags().StringVar(&serialHex, "serial", "", "certificate serial, lowercase hex")
	cmd.Flags().StringVar(&reason, "reason", "unspecified", "revocation reason")
	return cmd
}
