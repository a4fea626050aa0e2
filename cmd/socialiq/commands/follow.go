package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFollowCommand() *cobra.Command {
	var landscapeID int64

	cmd := &cobra.Command{
		Use:   "follow COMPANY_ID...",
		Args:  cobra.MinimumNArgs(1),
		Short: "Follow companies in a landscape by company ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newRivalIQClient(cfg)
			if err != nil {
				return err
			}

			if err := client.FollowCompanies(cmd.Context(), landscapeID, ids); err != nil {
				return err
			}
			fmt.Printf("followed %d companies in landscape %d\n", len(ids), landscapeID)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&landscapeID, "landscape", "l", 0, "landscape ID")
	_ = cmd.MarkFlagRequired("landscape")

	return cmd
}

func newUnfollowCommand() *cobra.Command {
	var (
		landscapeID int64
		all         bool
	)

	cmd := &cobra.Command{
		Use:   "unfollow [COMPANY_ID...]",
		Short: "Unfollow companies in a landscape",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("cannot combine --all with company IDs")
			}
			if !all && len(args) == 0 {
				return fmt.Errorf("provide company IDs or --all")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newRivalIQClient(cfg)
			if err != nil {
				return err
			}

			if all {
				if err := client.UnfollowAllCompanies(cmd.Context(), landscapeID); err != nil {
					return err
				}
				fmt.Printf("unfollowed all companies in landscape %d\n", landscapeID)
				return nil
			}

			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := client.UnfollowCompany(cmd.Context(), landscapeID, id); err != nil {
					return err
				}
			}
			fmt.Printf("unfollowed %d companies in landscape %d\n", len(ids), landscapeID)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&landscapeID, "landscape", "l", 0, "landscape ID")
	cmd.Flags().BoolVar(&all, "all", false, "unfollow every company in the landscape")
	_ = cmd.MarkFlagRequired("landscape")

	return cmd
}
