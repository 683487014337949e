package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurel3d/aletheia/header"
	"github.com/aurel3d/aletheia/signer"
	"github.com/aurel3d/aletheia/store"
)

func newSignCmd() *cobra.Command {
	var dataDir, in, out, contentType, originalName, description string
	var compress bool

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a file into a tamper-evident envelope",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveDataDir(dataDir)
			if in == "" {
				return fmt.Errorf("--in is required")
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if !store.IsInitialized(dir) {
				return fmt.Errorf("no identity found in %s; run ca-init or cert-issue first", dir)
			}

			priv, err := store.LoadKey(dir)
			if err != nil {
				return err
			}
			chain, err := store.LoadChain(dir)
			if err != nil {
				return err
			}

			s, err := signer.New(priv, chain)
			if err != nil {
				return fmt.Errorf("build signer: %w", err)
			}

			payload, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read input file %s: %w", in, err)
			}

			h := &header.Header{
				CreatorID:    chain.Creator().SubjectID,
				SignedAt:     time.Now().Unix(),
				ContentType:  contentType,
				OriginalName: originalName,
				Description:  description,
			}

			envelope, err := s.Sign(payload, h, compress)
			if err != nil {
				return fmt.Errorf("sign: %w", err)
			}

			if err := os.WriteFile(out, envelope, 0644); err != nil {
				return fmt.Errorf("write output file %s: %w", out, err)
			}

			log.WithField("creator_id", h.CreatorID).Info("envelope signed")
			fmt.Println("File signed successfully.")
			fmt.Printf("  Creator ID: %s\n", h.CreatorID)
			fmt.Printf("  Signed At:  %s\n", time.Unix(h.SignedAt, 0).UTC().Format(time.RFC3339))
			fmt.Printf("  Output:     %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "signing identity's data directory")
	cmd.Flags().StringVar(&in, "in", "", "path to the payload to sign")
	cmd.Flags().StringVar(&out, "out", "", "path to write the signed envelope")
	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type of the payload")
	cmd.Flags().StringVar(&originalName, "original-name", "", "original file name of the payload")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	cmd.Flags().BoolVar(&compress, "compress", false, "store the payload compressed")
	return cmd
}
