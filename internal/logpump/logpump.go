// Package logpump forwards flushed log entries as NOTIFICATION_LOG_MSG
// PDUs. It is wired as a logrus.Hook so every
// package in this module can log normally through the shared *logrus.Logger
// and have the result mirrored to the peer, rather than each package
// needing to know about the protocol sender.
package logpump

import (
	"bytes"

	"github.com/sirupsen/logrus"
)

// Sender is the minimal capability the pump needs from the session: send
// one notification PDU, ignoring the outcome. Satisfied by
// (*pdu.Framer).Send partially applied to the log-msg tag, via the
// adapter session wires in.
type Sender func(payload []byte)

// Hook implements logrus.Hook, formatting each fired entry and handing
// the bytes to Sender. A send failure (or no Sender configured, before
// the session has connected) is silently dropped: log loss is preferable
// to stalling the protocol loop waiting on a sender that isn't there.
type Hook struct {
	formatter logrus.Formatter
	send      Sender
}

// NewHook constructs a pump hook. send may be nil until the session has
// something to flush through (e.g. during early boot, before a transport
// exists); Fire is a no-op until SetSender is called.
func NewHook() *Hook {
	return &Hook{formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}}
}

// SetSender installs (or replaces) the pump's output sink.
func (h *Hook) SetSender(send Sender) { h.send = send }

// Levels reports that the pump forwards every log level; filtering, if
// wanted, belongs on the logger itself.
func (h *Hook) Levels() []logrus.Level { return logrus.AllLevels }

// Fire formats entry and forwards it. Errors from formatting or sending
// are swallowed on purpose (see package doc).
func (h *Hook) Fire(entry *logrus.Entry) error {
	if h.send == nil {
		return nil
	}
	b, err := h.formatter.Format(entry)
	if err != nil {
		return nil //nolint:nilerr
	}
	h.send(bytes.TrimRight(b, "\n"))
	return nil
}
