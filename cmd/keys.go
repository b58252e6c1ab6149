package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Generate COOKIE_HASH_KEY, COOKIE_BLOCK_KEY and CONTACT_ENC_KEY values (base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"COOKIE_HASH_KEY", "COOKIE_BLOCK_KEY", "CONTACT_ENC_KEY"} {
				key := make([]byte, 32)
				if _, err := rand.Read(key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "export %s=%s\n", name, base64.StdEncoding.EncodeToString(key))
			}
			return nil
		},
	}
}
