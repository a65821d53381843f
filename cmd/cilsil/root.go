package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "cilsil",
		Short:         "Translate CIL method bodies into control-flow graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				viper.SetConfigFile(configFile)
				if err := viper.ReadInConfig(); err != nil {
					return err
				}
			}
			processGlobalFlags()
			return nil
		},
	}

	viper.SetEnvPrefix("cilsil")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	viper.BindPFlag("no-color", flags.Lookup("no-color"))
	viper.BindPFlag("log-level", flags.Lookup("log-level"))

	cmd.AddCommand(
		newTranslateCmd(),
		newDisCmd(),
		newOpcodesCmd(),
		newVersionCmd(),
	)
	return cmd
}
