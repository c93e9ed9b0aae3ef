// Package cmd provides the root command and CLI setup for mutacore.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const pathPatternsHelp = `mutate selects targets from either a PR diff (--pr) or a single file
(--file); exactly one of the two is required.`

const rootLongDescription = `mutacore is a mutation testing driver for Bitcoin Core: it introduces
small, syntactic changes (mutations) into C++ source and tells you
whether the test suite notices.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutacore",
		Short: "Mutation testing driver for Bitcoin Core",
		Long:  rootLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// verboseFlag enables debug-level logging across every subcommand.
var verboseFlag bool

// logFileFlag overrides the rotating log file path (config key log.filename).
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("verbose"), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", viper.GetString(logFilenameKey), "path to the rotating log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("log-file"), logFilenameKey)

	cmd.PersistentFlags().StringVar(&upstreamRef, upstreamRefFlagName, viper.GetString(upstreamRefConfig), "git ref PR diffs and changed-line detection are computed against")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(upstreamRefFlagName), upstreamRefConfig)
}

// upstreamRef is the PR-diff base ref, shared by mutate's git adapter.
var upstreamRef string

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
