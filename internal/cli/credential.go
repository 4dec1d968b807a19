package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCredentialCmd создаёт группу команд для управления credentials.
func NewCredentialCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage provider credentials",
	}

	cmd.AddCommand(
		newCredentialListCmd(clientFn, outputFn),
		newCredentialCreateCmd(clientFn, outputFn),
		newCredentialDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newCredentialListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			creds, err := client.ListCredentials()
			if err != nil {
				return err
			}

			headers := []string{"ID", "TYPE", "NAME", "CREATED"}
			rows := make([][]string, len(creds))
			for i, c := range creds {
				rows[i] = []string{c.ID, c.Type, c.Name, c.CreatedAt}
			}

			out.Print(headers, rows, creds)
			return nil
		},
	}
}

func newCredentialCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var credType, name, value string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			cred, err := client.CreateCredential(CreateCredentialRequest{
				Type:  credType,
				Name:  name,
				Value: value,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Credential created: %s", cred.ID))
			out.Print(
				[]string{"ID", "TYPE", "NAME", "CREATED"},
				[][]string{{cred.ID, cred.Type, cred.Name, cred.CreatedAt}},
				cred,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&credType, "type", "", "Provider type: GEMINI, OPENAI, ANTHROPIC (required)")
	cmd.Flags().StringVar(&name, "name", "", "Credential name (required)")
	cmd.Flags().StringVar(&value, "value", "", "API key value (required)")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("value")

	return cmd
}

func newCredentialDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteCredential(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Credential deleted: %s", args[0]))
			return nil
		},
	}
}
