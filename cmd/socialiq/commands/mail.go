package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veemedia/socialiq/mailbox"
	"github.com/veemedia/socialiq/table"
)

func newMailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Args:  cobra.NoArgs,
		Short: "Search, pull, and send mailbox reports",
	}

	cmd.AddCommand(
		newMailSearchCommand(),
		newMailPullCommand(),
		newMailSendCommand(),
	)

	return cmd
}

func newMailSearchCommand() *cobra.Command {
	var (
		from     string
		subject  []string
		excludes string
		sentOn   string
		today    bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Args:  cobra.NoArgs,
		Short: "List UIDs of messages matching the criteria, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			agent, err := newMailboxAgent(cfg)
			if err != nil {
				return err
			}

			sc := mailbox.SearchCriteria{
				From:            from,
				SubjectContains: subject,
				SubjectExcludes: excludes,
				SentToday:       today,
			}
			if sc.SentOn, err = parseDate(sentOn); err != nil {
				return err
			}

			uids, err := agent.Search(cmd.Context(), sc)
			if err != nil {
				return err
			}
			for _, uid := range uids {
				fmt.Println(uid)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "sender address substring")
	cmd.Flags().StringSliceVar(&subject, "subject", nil, "subject must contain each value")
	cmd.Flags().StringVar(&excludes, "exclude", "", "subject must not contain this value")
	cmd.Flags().StringVar(&sentOn, "sent-on", "", "sent on this day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&today, "today", false, "sent today")

	return cmd
}

func newMailPullCommand() *cobra.Command {
	var (
		keyColumns  []string
		destination string
		viaURL      bool
		baseURL     string
	)

	cmd := &cobra.Command{
		Use:   "pull UID",
		Args:  cobra.ExactArgs(1),
		Short: "Pull a message's CSV report, from its attachment or a linked URL, and print or stage it",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid UID %q", args[0])
			}
			if baseURL != "" && !viaURL {
				return fmt.Errorf("--base-url requires --via-url")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			agent, err := newMailboxAgent(cfg)
			if err != nil {
				return err
			}

			var tbl *table.Table
			if viaURL {
				tbl, err = agent.URLTable(cmd.Context(), uint32(uid), baseURL)
			} else {
				tbl, err = agent.AttachmentTable(cmd.Context(), uint32(uid), keyColumns)
			}
			if err != nil {
				return err
			}

			if destination == "" {
				return printTable(os.Stdout, tbl)
			}

			store, err := openWarehouse(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.Stage(cmd.Context(), tbl, strings.ToUpper(destination))
			if err != nil {
				return err
			}
			fmt.Printf("staged %d rows into %s (load %s)\n",
				result.RowCount, result.Destination, result.LoadID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&keyColumns, "key-columns", nil, "locate the header row by these column names")
	cmd.Flags().StringVar(&destination, "stage-into", "", "stage into this warehouse table instead of printing")
	cmd.Flags().BoolVar(&viaURL, "via-url", false, "download the CSV from the single link in the message body instead of an attachment")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "only consider body links starting with this prefix")

	return cmd
}

func newMailSendCommand() *cobra.Command {
	var (
		to         string
		subject    string
		body       string
		attachment string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Args:  cobra.NoArgs,
		Short: "Send a plain-text email with an optional attachment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			agent, err := newMailboxAgent(cfg)
			if err != nil {
				return err
			}

			if err := agent.Send(to, subject, body, attachment); err != nil {
				return err
			}
			fmt.Printf("sent %q to %s\n", subject, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&subject, "subject", "", "message subject")
	cmd.Flags().StringVar(&body, "body", "", "plain-text body")
	cmd.Flags().StringVar(&attachment, "attach", "", "path of a file to attach")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
