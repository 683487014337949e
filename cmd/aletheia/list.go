package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurel3d/aletheia/store"
)

func newListCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List certificates issued by this identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveDataDir(dataDir)

			entries, err := store.LoadIndex(dir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No certificates issued.")
				return nil
			}

			revoked, err := store.LoadRevoked(dir)
			if err != nil {
				return err
			}

			fmt.Printf("%-10s%-20s%-9s%-22s%s\n", "SERIAL", "SUBJECT ID", "IS CA", "ISSUED AT", "STATUS")
			for _, e := range entries {
				status := "active"
				if _, ok := revoked[e.Serial]; ok {
					status = "revoked"
				}
				fmt.Printf("%-10s%-20s%-9v%-22s%s\n",
					e.Serial, e.SubjectID, e.IsCA, e.IssuedAt.Format(time.RFC3339), status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "identity data directory")
	return cmd
}
