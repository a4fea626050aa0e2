package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veemedia/socialiq/rivaliq"
	"github.com/veemedia/socialiq/warehouse"
)

func newExportCommand() *cobra.Command {
	var (
		landscapeID int64
		companyID   string
		channel     string
		start       string
		end         string
		stage       bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Args:  cobra.NoArgs,
		Short: "Run a bulk social post export and print or stage the result",
		Long: `Submits a bulk export job, polls until the remote service
materializes the file, downloads it, and either prints the rows or
stages them into the warehouse table for the chosen channel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newRivalIQClient(cfg)
			if err != nil {
				return err
			}

			ch := rivaliq.ChannelAll
			if channel != "" {
				if ch, err = rivaliq.ParseChannel(channel); err != nil {
					return err
				}
			}

			filter := rivaliq.ExportFilter{CompanyID: companyID, Channel: ch}
			if filter.Start, err = parseDate(start); err != nil {
				return err
			}
			if filter.End, err = parseDate(end); err != nil {
				return err
			}

			tbl, err := client.BulkSocialPosts(cmd.Context(), landscapeID, filter)
			if err != nil {
				return err
			}

			if !stage {
				return printTable(os.Stdout, tbl)
			}

			destination, err := warehouse.DestinationFor(string(ch))
			if err != nil {
				return err
			}
			store, err := openWarehouse(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.Stage(cmd.Context(), tbl, destination)
			if err != nil {
				return err
			}
			fmt.Printf("staged %d rows into %s (load %s)\n",
				result.RowCount, result.Destination, result.LoadID)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&landscapeID, "landscape", "l", 0, "landscape ID")
	cmd.Flags().StringVar(&companyID, "company", "", "restrict to one company ID")
	cmd.Flags().StringVarP(&channel, "channel", "c", "", "social channel (default all)")
	cmd.Flags().StringVar(&start, "start", "", "period start, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "period end, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&stage, "stage", false, "stage the result into the warehouse instead of printing")
	_ = cmd.MarkFlagRequired("landscape")

	return cmd
}

func newLoadsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "loads",
		Args:  cobra.NoArgs,
		Short: "Show the warehouse load history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openWarehouse(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			loads, err := store.Loads(cmd.Context())
			if err != nil {
				return err
			}

			var b strings.Builder
			for _, l := range loads {
				fmt.Fprintf(&b, "%s  %-32s %6d rows  %s\n",
					l.LoadedAt.Format("2006-01-02 15:04:05"),
					l.Destination, l.RowCount, l.LoadID)
			}
			fmt.Print(b.String())
			return nil
		},
	}
}
