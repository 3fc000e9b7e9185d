package uart

import "github.com/M0rdr3d/psp-apps/internal/stuberr"

// 16550-compatible register offsets, the same layout the legacy x86 UART
// at 0x3F8 exposes and what the original source's PSPUART drives.
const (
	regRBR = 0x0 // receiver buffer (read)
	regTHR = 0x0 // transmitter holding (write)
	regLSR = 0x5 // line status

	lsrDataReady = 0x01
	lsrTHREmpty  = 0x20
)

// Generic is the byte-FIFO, line-discipline UART collaborator built over
// a RegisterIO: a concrete body for the generic-UART concern, since Port
// (what proto/pdu needs) has to be satisfied by something concrete.
type Generic struct {
	regs   RegisterIO
	config LineConfig
}

// NewGeneric constructs a Generic UART over regs, applying cfg as the
// line configuration (the stub always runs at 115200 8N1).
func NewGeneric(regs RegisterIO, cfg LineConfig) (*Generic, error) {
	if cfg.DataBits != 8 || cfg.StopBits != 1 || cfg.Parity != "N" {
		return nil, stuberr.New(stuberr.InvalidParameter, "unsupported line config %+v", cfg)
	}
	return &Generic{regs: regs, config: cfg}, nil
}

// Write blocks until every byte in p has been accepted by the
// transmitter, one register write at a time (the UART transmitter is
// assumed to block internally until each byte is accepted).
func (g *Generic) Write(p []byte) (int, error) {
	for i, b := range p {
		for {
			lsr, err := g.regs.ReadReg(regLSR)
			if err != nil {
				return i, err
			}
			if lsr&lsrTHREmpty != 0 {
				break
			}
		}
		if err := g.regs.WriteReg(regTHR, b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Available reports 1 if a received byte is waiting, 0 otherwise —
// the PDU parser only ever asks "is there at least one more byte", so a
// precise FIFO depth is not needed.
func (g *Generic) Available() (int, error) {
	lsr, err := g.regs.ReadReg(regLSR)
	if err != nil {
		return 0, err
	}
	if lsr&lsrDataReady != 0 {
		return 1, nil
	}
	return 0, nil
}

// Read drains up to len(p) currently-available received bytes without
// blocking.
func (g *Generic) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		lsr, err := g.regs.ReadReg(regLSR)
		if err != nil {
			return n, err
		}
		if lsr&lsrDataReady == 0 {
			break
		}
		b, err := g.regs.ReadReg(regRBR)
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}
