package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/veemedia/socialiq/rivaliq"
)

func newPostsCommand() *cobra.Command {
	var (
		landscapeID int64
		companyID   string
		channel     string
		start       string
		end         string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "posts",
		Args:  cobra.NoArgs,
		Short: "Fetch top social posts for a landscape",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newRivalIQClient(cfg)
			if err != nil {
				return err
			}

			filter := rivaliq.PostFilter{CompanyID: companyID, Limit: limit}
			if channel != "" {
				if filter.Channel, err = rivaliq.ParseChannel(channel); err != nil {
					return err
				}
			}
			if filter.Start, err = parseDate(start); err != nil {
				return err
			}
			if filter.End, err = parseDate(end); err != nil {
				return err
			}

			tbl, err := client.SocialPosts(cmd.Context(), landscapeID, filter)
			if err != nil {
				return err
			}
			return printTable(os.Stdout, tbl)
		},
	}

	cmd.Flags().Int64VarP(&landscapeID, "landscape", "l", 0, "landscape ID")
	cmd.Flags().StringVar(&companyID, "company", "", "restrict to one company ID")
	cmd.Flags().StringVarP(&channel, "channel", "c", "", "social channel (facebook, twitter, instagram, youtube, tiktok)")
	cmd.Flags().StringVar(&start, "start", "", "period start, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "period end, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum posts to return (capped at 500)")
	_ = cmd.MarkFlagRequired("landscape")

	return cmd
}

func newMetricsCommand() *cobra.Command {
	var (
		landscapeID int64
		channel     string
		start       string
		end         string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Args:  cobra.NoArgs,
		Short: "Fetch summary metrics for a landscape",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newRivalIQClient(cfg)
			if err != nil {
				return err
			}

			filter := rivaliq.MetricFilter{}
			if channel != "" {
				if filter.Channel, err = rivaliq.ParseChannel(channel); err != nil {
					return err
				}
			}
			if filter.Start, err = parseDate(start); err != nil {
				return err
			}
			if filter.End, err = parseDate(end); err != nil {
				return err
			}

			tbl, err := client.SummaryMetrics(cmd.Context(), landscapeID, filter)
			if err != nil {
				return err
			}
			return printTable(os.Stdout, tbl)
		},
	}

	cmd.Flags().Int64VarP(&landscapeID, "landscape", "l", 0, "landscape ID")
	cmd.Flags().StringVarP(&channel, "channel", "c", "", "social channel")
	cmd.Flags().StringVar(&start, "start", "", "period start, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "period end, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("landscape")

	return cmd
}
