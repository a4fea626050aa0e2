package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLandscapesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "landscapes",
		Args:  cobra.NoArgs,
		Short: "List Rival IQ landscapes on the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newRivalIQClient(cfg)
			if err != nil {
				return err
			}

			landscapes, err := client.Landscapes(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, l := range landscapes {
				fmt.Fprintf(tw, "%d\t%s\n", l.ID, l.Name)
			}
			return tw.Flush()
		},
	}
}

func newCompaniesCommand() *cobra.Command {
	var landscapeID int64

	cmd := &cobra.Command{
		Use:   "companies",
		Args:  cobra.NoArgs,
		Short: "List the companies followed in a landscape",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newRivalIQClient(cfg)
			if err != nil {
				return err
			}

			companies, err := client.Companies(cmd.Context(), landscapeID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, c := range companies {
				fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Int64VarP(&landscapeID, "landscape", "l", 0, "landscape ID")
	_ = cmd.MarkFlagRequired("landscape")

	return cmd
}
