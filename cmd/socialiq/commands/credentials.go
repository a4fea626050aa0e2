package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veemedia/socialiq/internal/credential"
)

func newCredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Args:  cobra.NoArgs,
		Short: "Manage secrets in the system keyring",
	}

	cmd.AddCommand(
		newCredentialSetCommand(),
		newCredentialDeleteCommand(),
	)

	return cmd
}

func credentialKey(name string) (string, error) {
	switch name {
	case "rivaliq":
		return credential.KeyRivalIQAPIKey, nil
	case "mailbox":
		return credential.KeyMailboxPassword, nil
	default:
		return "", fmt.Errorf("unknown credential %q, want rivaliq or mailbox", name)
	}
}

func newCredentialSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME",
		Args:  cobra.ExactArgs(1),
		Short: "Store a secret (rivaliq or mailbox), read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := credentialKey(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "enter value for %s: ", args[0])
			reader := bufio.NewReader(os.Stdin)
			value, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading value: %w", err)
			}
			value = strings.TrimRight(value, "\r\n")
			if value == "" {
				return fmt.Errorf("empty value")
			}

			if err := credential.Set(key, value); err != nil {
				return err
			}
			fmt.Printf("stored %s credential\n", args[0])
			return nil
		},
	}
}

func newCredentialDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Args:  cobra.ExactArgs(1),
		Short: "Remove a secret (rivaliq or mailbox)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := credentialKey(args[0])
			if err != nil {
				return err
			}
			if err := credential.Delete(key); err != nil {
				return err
			}
			fmt.Printf("deleted %s credential\n", args[0])
			return nil
		},
	}
}
