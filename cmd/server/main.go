package main

import (
	"fmt"
	"os"

	"github.com/photofolio/server/internal/handlers"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "photofolio",
	Short:   "Photo portfolio server",
	Long:    "Serves a photo portfolio backed by a headless content store.",
	Version: handlers.Version,
	// the bare command serves, same as "photofolio serve"
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Build the photo feed once and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		statsOnly, err := cmd.Flags().GetBool("stats")
		if err != nil {
			return err
		}
		return runFeed(cmd.Context(), cmd.OutOrStdout(), statsOnly)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default config.json, or $CONFIG_PATH)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			return os.Setenv("CONFIG_PATH", configPath)
		}
		return nil
	}

	feedCmd.Flags().Bool("stats", false, "print only the aggregate stats")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(feedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
