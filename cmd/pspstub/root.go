package main

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix binds every flag to PSPSTUB_<FLAG_NAME> so the stub can be
// driven from a unit file or CI harness without a config file.
const envPrefix = "PSPSTUB"

func newRootCmd() *cobra.Command {
	v := viper.New()
	log := logrus.New()

	cmd := &cobra.Command{
		Use:           "pspstub",
		Short:         "SCP debug-stub session host",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v.SetEnvPrefix(envPrefix)
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(v.GetString("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			if v.GetString("log-format") == "json" {
				log.SetFormatter(&logrus.JSONFormatter{})
			} else {
				log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "text", "log output format (text, json)")

	cmd.AddCommand(newServeCmd(v, log))
	cmd.AddCommand(newResetCmd(v, log))
	return cmd
}
