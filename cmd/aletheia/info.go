package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurel3d/aletheia/envelope"
)

func newInfoCmd() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Inspect an envelope's structure without checking trust",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return fmt.Errorf("--in is required")
			}

			b, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("read envelope %s: %w", in, err)
			}

			parsed, err := envelope.Parse(b)
			if err != nil {
				return fmt.Errorf("parse envelope: %w", err)
			}

			fmt.Printf("Version:     %d.%d\n", parsed.VersionMajor, parsed.VersionMinor)
			fmt.Printf("Compressed:  %v\n", parsed.Compressed())
			fmt.Printf("Creator ID:  %s\n", parsed.Header.CreatorID)
			fmt.Printf("Signed At:   %s\n", time.Unix(parsed.Header.SignedAt, 0).UTC().Format(time.RFC3339))
			if parsed.Header.ContentType != "" {
				fmt.Printf("Content Type: %s\n", parsed.Header.ContentType)
			}
			if parsed.Header.OriginalName != "" {
				fmt.Printf("Original Name: %s\n", parsed.Header.OriginalName)
			}
			if parsed.Header.Description != "" {
				fmt.Printf("Description:  %s\n", parsed.Header.Description)
			}
			fmt.Printf("Payload Size: %d bytes\n", len(parsed.Payload))
			fmt.Printf("Chain (%d certificates):\n", len(parsed.Chain))
			for i, c := range parsed.Chain {
				role := "intermediate"
				if i == 0 {
					role = "creator"
				} else if c.SelfSigned() {
					role = "root"
				}
				fmt.Printf("  [%d] %-12s subject=%s issuer=%s is_ca=%v serial=%x\n",
					i, role, FormatSubject(c.SubjectName, c.SubjectID), c.IssuerID, c.IsCA, c.Serial)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "path to the envelope to inspect")
	return cmd
}
