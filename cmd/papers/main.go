// Package main is the papers CLI, a terminal client for the paper summary API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"paper_summaries_go_backend/internal/client"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultAPIURL = "http://localhost:3000/api"

var rootCmd = &cobra.Command{
	Use:   "papers",
	Short: "Browse and curate research paper summaries",
	Long: `papers talks to the paper summary API. It lists, searches, creates, edits
and deletes paper summaries, exports them as BibTeX or PDF, and follows the
live change feed.

The API location is read from --api-url, the PAPERS_API_URL environment
variable or api-url in papers.yaml.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if viper.GetBool("verbose") {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./papers.yaml or ~/.config/papers/papers.yaml)")
	rootCmd.PersistentFlags().String("api-url", defaultAPIURL, "base URL of the paper API")
	rootCmd.PersistentFlags().Duration("timeout", client.DefaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("papers")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "papers"))
		}
	}

	viper.SetEnvPrefix("PAPERS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

func newClient() (*client.Client, error) {
	c, err := client.New(viper.GetString("api-url"), viper.GetDuration("timeout"))
	if err != nil {
		return nil, fmt.Errorf("configure client: %w", err)
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
