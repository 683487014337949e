package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurel3d/aletheia/keys"
	"github.com/aurel3d/aletheia/store"
	"github.com/aurel3d/aletheia/verifier"
)

func newVerifyCmd() *cobra.Command {
	var in string
	var trustedRoots []string
	var revokedDir string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signed envelope against a set of trusted roots",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return fmt.Errorf("--in is required")
			}
			if len(trustedRoots) == 0 {
				return fmt.Errorf("at least one --trusted-root is required")
			}

			b, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read envelope %s: %w", in, err)
			}

			anchors, err := loadTrustAnchors(trustedRoots)
			if err != nil {
				return err
			}

			var revoked verifier.RevokedSerials
			if revokedDir != "" {
				m, err := store.LoadRevoked(revokedDir)
				if err != nil {
					return err
				}
				revoked = m.ToRevokedSerials()
			}

			result, err := verifier.Verify(b, anchors, revoked)
			if err != nil {
				fmt.Println("Verification: FAILED")
				fmt.Printf("  Reason: %v\n", err)
				return fmt.Errorf("verification failed: %w", err)
			}

			fmt.Println("Verification: OK")
			fmt.Printf("  Creator:   %s\n", FormatSubject(result.CreatorName, result.CreatorID))
			fmt.Printf("  Signed At: %s\n", time.Unix(result.SignedAt, 0).UTC().Format(time.RFC3339))
			if result.ContentType != "" {
				fmt.Printf("  Content Type: %s\n", result.ContentType)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "path to the envelope to verify")
	cmd.Flags().StringSliceVar(&trustedRoots, "trusted-root", nil, "path to a trusted root certificate (repeatable)")
	cmd.Flags().StringVar(&revokedDir, "revoked-dir", "", "data directory holding a revocation set to consult")
	return cmd
}

func loadTrustAnchors(paths []string) (verifier.TrustAnchors, error) {
	var roots []keys.PublicKey
	for _, p := range paths {
		c, err := store.LoadCertificateFile(p)
		if err != nil {
			return nil, fmt.Errorf("load trusted root %s: %w", p, err)
		}
		roots = append(roots, c.PublicKey)
	}
	return verifier.NewTrustAnchors(roots...), nil
}
