// Package timekeeper converts the free-running 100 MHz (10 ns granularity)
// hardware counter into a monotonic millisecond count, handling 32-bit
// counter wraparound with the same narrow-counter wrap-safe delta shape
// any fixed-width saturating or history register needs.
package timekeeper

import "github.com/M0rdr3d/psp-apps/internal/hwreg"

const (
	ctrlReg    = hwreg.Addr(0x03010424)
	counterReg = hwreg.Addr(0x03010424 + 32)

	ticksPerMs = 100_000 // 100 MHz counter, 10ns/tick -> 100_000 ticks/ms
)

// Counter abstracts the raw hardware counter read so tests can drive the
// timekeeper without real registers, while the production path
// (HardwareCounter) reads the live 100 MHz counter.
type Counter interface {
	Read() uint32
}

// HardwareCounter reads the live free-running counter register.
type HardwareCounter struct{}

func (HardwareCounter) Read() uint32 { return hwreg.Read32(counterReg) }

// Timekeeper is the monotonic millisecond accumulator tracking session
// uptime for beacon/heartbeat timestamps.
type Timekeeper struct {
	counter     Counter
	cnts        uint32
	subMsTicks  uint32
	millisAccum uint64
}

// New constructs a Timekeeper over the given counter source, taking the
// counter's current value as the starting point. It does not enable the
// counter; call Init for the live hardware counter.
func New(counter Counter) *Timekeeper {
	return &Timekeeper{counter: counter, cnts: counter.Read()}
}

// Init clears the counter and starts it: write the counter
// value to 0, then write 0x101 to the control register.
func Init() *Timekeeper {
	hwreg.Write32(counterReg, 0)
	hwreg.Write32(ctrlReg, 0x101)
	return New(HardwareCounter{})
}

// handle reads the current counter value, computes the wrap-safe delta
// since the last observation, and advances the millisecond accumulator
// by one for every whole 100_000-tick (1ms) interval consumed, carrying
// any remainder into subMsTicks (and advancing once more if that residue
// itself reaches a full millisecond).
func (t *Timekeeper) handle() {
	cur := t.counter.Read()

	var delta uint32
	if cur >= t.cnts {
		delta = cur - t.cnts
	} else {
		delta = cur + (0xFFFFFFFF - t.cnts) + 1
	}
	t.cnts = cur

	total := uint64(t.subMsTicks) + uint64(delta)
	wholeMs := total / ticksPerMs
	t.millisAccum += wholeMs
	t.subMsTicks = uint32(total % ticksPerMs)
}

// Millies returns the current monotonic millisecond count, advancing the
// accumulator from the live counter first.
func (t *Timekeeper) Millies() uint64 {
	t.handle()
	return t.millisAccum
}
