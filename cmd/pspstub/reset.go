package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/M0rdr3d/psp-apps/internal/uart"
)

// newResetCmd pulses a GPIO reset line wired to the SCP, for host-side
// bring-up before a "serve" run (SPEC_FULL.md Part C.1).
func newResetCmd(v *viper.Viper, log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Pulse the SCP's GPIO reset line",
		RunE: func(cmd *cobra.Command, args []string) error {
			pin := v.GetString("pin")
			if pin == "" {
				return errMissingFlag("pin")
			}
			line, err := uart.OpenResetLine(pin)
			if err != nil {
				return err
			}
			width := v.GetDuration("pulse-width")
			log.WithFields(logrus.Fields{"pin": pin, "width": width}).Info("pulsing reset line")
			return line.Pulse(width)
		},
	}
	cmd.Flags().String("pin", "", "GPIO pin name wired to the SCP reset input")
	cmd.Flags().Duration("pulse-width", 50*time.Millisecond, "how long to hold reset low")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}
