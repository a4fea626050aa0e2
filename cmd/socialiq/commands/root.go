// Package commands implements the socialiq command line interface.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/veemedia/socialiq/internal/config"
)

var (
	configPath string
	verbose    bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "socialiq",
		Short:         "Pull Rival IQ analytics and mailbox reports into a staging warehouse",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newLandscapesCommand(),
		newCompaniesCommand(),
		newPostsCommand(),
		newMetricsCommand(),
		newExportCommand(),
		newFollowCommand(),
		newUnfollowCommand(),
		newMailCommand(),
		newCredentialCommand(),
		newLoadsCommand(),
	)

	return rootCmd
}
