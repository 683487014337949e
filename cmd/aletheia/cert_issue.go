package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/keys"
	"github.com/aurel3d/aletheia/store"
)

func newCertIssueCmd() *cobra.Command {
	var dataDir, outDir, subjectID, subjectName string
	var isCA bool

	cmd := &cobra.Command{
		Use:   "cert-issue",
		Short: "Issue a new certificate under an existing identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveDataDir(dataDir)
			if subjectID == "" || subjectName == "" {
				return fmt.Errorf("--subject-id and --subject-name are required")
			}
			if outDir == "" {
				return fmt.Errorf("--out-dir is required")
			}
			if !store.IsInitialized(dir) {
				return fmt.Errorf("no identity found in %s; run ca-init first", dir)
			}

			issuerPriv, err := store.LoadKey(dir)
			if err != nil {
				return err
			}
			issuerCert, err := store.LoadCertificate(dir)
			if err != nil {
				return err
			}
			issuerChain, err := store.LoadChain(dir)
			if err != nil {
				return err
			}

			authority, err := cert.LoadAuthority(issuerPriv, issuerCert)
			if err != nil {
				return err
			}

			pub, priv, err := keys.Generate()
			if err != nil {
				return fmt.Errorf("generate subject keypair: %w", err)
			}
			issued, err := authority.Issue(subjectID, subjectName, pub, isCA)
			if err != nil {
				return err
			}

			subjectChain := append(cert.Chain{issued}, issuerChain...)

			if err := store.Init(outDir); err != nil {
				return err
			}
			if err := store.SaveKey(outDir, priv); err != nil {
				return err
			}
			if err := store.SaveCertificate(outDir, issued); err != nil {
				return err
			}
			if err := store.SaveChain(outDir, subjectChain); err != nil {
				return err
			}

			if err := store.AppendIndexEntry(dir, store.IndexEntry{
				Serial:      fmt.Sprintf("%x", issued.Serial),
				SubjectID:   issued.SubjectID,
				SubjectName: issued.SubjectName,
				IssuerID:    issued.IssuerID,
				IsCA:        issued.IsCA,
				IssuedAt:    time.Unix(issued.IssuedAt, 0).UTC(),
			}); err != nil {
				return err
			}

			log.WithField("subject_id", issued.SubjectID).Info("certificate issued")
			fmt.Println("Certificate issued successfully.")
			fmt.Printf("  Subject ID:   %s\n", issued.SubjectID)
			fmt.Printf("  Serial:       %x\n", issued.Serial)
			fmt.Printf("  Is CA:        %v\n", issued.IsCA)
			fmt.Printf("  Identity Dir: %s\n", outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "issuing identity's data directory")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory to write the new identity into")
	cmd.Flags().StringVar(&subjectID, "subject-id", "", "unique identifier for the new identity")
	cmd.Flags().StringVar(&subjectName, "subject-name", "", "display name for the new identity")
	cmd.Flags().BoolVar(&isCA, "is-ca", false, "grant the new identity authority to issue further certificates")
	return cmd
}
