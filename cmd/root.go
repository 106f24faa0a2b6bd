// Copyright © 2024 The GHLS authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // default logging backend

	"github.com/luthersystems/ghls/entity"
	"github.com/luthersystems/ghls/provider/github"
	"github.com/luthersystems/ghls/session"
)

var log = commonlog.GetLogger("ghls.cmd")

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ghls",
	Short: "GitHub-aware language server for markdown",
	Long: `ghls is a language server for markdown files. It completes references
to GitHub issues, organization members, repositories, wiki pages and users,
and shows what a GitHub link points at on hover.

Completion sigils:
  #needle      Issues and pull requests of the current repository
  @needle      Members of the repository owner
  [needle      Wiki pages of the current repository
  /needle      Repositories the authenticated user can access
  :needle      GitHub user search

Getting started:
  ghls lsp                     Start the language server on stdio
  ghls cache issue cron        Load the caches and list matching issues

Configuration is read from flags, GHLS_* environment variables and
$HOME/.ghls.yaml. The access token falls back to $GITHUB_TOKEN and then
to "gh auth token"; the repository falls back to the "origin" remote of
the working directory.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ghls.yaml)")
	flags.CountP("verbose", "v", "increase log verbosity (repeatable)")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("token", "", "GitHub access token (default $GITHUB_TOKEN, then gh auth token)")
	flags.String("owner", "", "repository owner (default from the origin remote)")
	flags.String("repo", "", "repository name (default from the origin remote)")
	flags.String("host", entity.DefaultHost, "GitHub web host used in links")
	flags.String("api-url", github.DefaultAPIURL, "GitHub REST API base URL")
	flags.Int("per-page", github.DefaultPerPage, "records requested per page")
	flags.Duration("local-timeout", session.DefaultLocalBudget, "time budget for completions served from the caches")
	flags.Duration("remote-timeout", session.DefaultRemoteBudget, "time budget for user searches and lookups")

	for _, name := range []string{
		"verbose", "log-file", "token", "owner", "repo", "host",
		"api-url", "per-page", "local-timeout", "remote-timeout",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".ghls" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".ghls")
	}

	viper.SetEnvPrefix("ghls")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	err := viper.ReadInConfig()
	configureLogging()
	if err == nil {
		log.Infof("using config file %s", viper.ConfigFileUsed())
	}
}

// configureLogging applies the verbosity and log file settings. Logs never
// go to stdout, which carries the stdio transport.
func configureLogging() {
	verbosity := viper.GetInt("verbose")
	if path := viper.GetString("log-file"); path != "" {
		commonlog.Configure(verbosity, &path)
	} else {
		commonlog.Configure(verbosity, nil)
	}
}
