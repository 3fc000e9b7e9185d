package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/M0rdr3d/psp-apps/internal/session"
	"github.com/M0rdr3d/psp-apps/internal/uart"
)

// newServeCmd hosts the session loop over a real serial device. It is
// the host-tooling entrypoint; the register-backed UART bootstrap
// (session.Bootstrap) is only reachable when actually running on the
// SCP itself, which this binary, built for host use, never is — so
// serve always wires session.BootstrapOverPort against a SerialPort.
func newServeCmd(v *viper.Viper, log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the debug-stub session over a serial transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			device := v.GetString("device")
			if device == "" {
				return errMissingFlag("device")
			}
			if delay := v.GetDuration("cold-boot-delay"); delay > 0 {
				log.WithField("delay", delay).Info("waiting for cold boot")
				time.Sleep(delay)
			}

			port, err := uart.OpenSerialPort(device)
			if err != nil {
				return err
			}
			defer port.Close() //nolint:errcheck

			log.WithField("device", device).Info("starting debug-stub session")
			s := session.BootstrapOverPort(log, port)
			return session.Run(s)
		},
	}
	cmd.Flags().String("device", "", "serial device path (e.g. /dev/ttyUSB0)")
	cmd.Flags().Duration("cold-boot-delay", 0, "delay before opening the transport, to let a just-reset SCP finish booting")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

type errMissingFlag string

func (e errMissingFlag) Error() string { return "missing required flag --" + string(e) }
