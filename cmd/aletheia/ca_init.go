package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/store"
)

func newCAInitCmd() *cobra.Command {
	var dataDir, subjectID, subjectName string

	cmd := &cobra.Command{
		Use:   "ca-init",
		Short: "Generate a root identity and trust anchor",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveDataDir(dataDir)
			if subjectID == "" {
				return fmt.Errorf("--subject-id is required")
			}
			if subjectName == "" {
				return fmt.Errorf("--subject-name is required")
			}

			if store.IsInitialized(dir) {
				return fmt.Errorf("data directory %s already holds an identity", dir)
			}
			if err := store.Init(dir); err != nil {
				return err
			}

			authority, root, err := cert.NewRootAuthority(subjectID, subjectName)
			if err != nil {
				return fmt.Errorf("generate root identity: %w", err)
			}

			if err := store.SaveKey(dir, authority.PrivateKey()); err != nil {
				return err
			}
			if err := store.SaveCertificate(dir, root); err != nil {
				return err
			}
			if err := store.SaveChain(dir, cert.Chain{root}); err != nil {
				return err
			}

			log.Infof("root identity generated in %s", dir)
			fmt.Println("Root identity created.")
			fmt.Printf("  Subject ID:   %s\n", root.SubjectID)
			fmt.Printf("  Subject Name: %s\n", root.SubjectName)
			fmt.Printf("  Serial:       %x\n", root.Serial)
			fmt.Printf("  Data Dir:     %s\n", dir)
			fmt.Printf("Warning: private key stored unencrypted at %s/identity.key. Protect this file.\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "identity data directory")
	cmd.Flags().StringVar(&subjectID, "subject-id", "", "unique identifier for the root identity")
	cmd.Flags().StringVar(&subjectName, "subject-name", "", "display name for the root identity")
	return cmd
}
