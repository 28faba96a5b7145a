package pic

import (
	"sync/atomic"

	"nyxkernel/kernel/cpu"
)

const (
	pitCommandPort = 0x43
	pitChannel0    = 0x40

	// pitDivisor programs channel 0 for ~20 Hz: the PIT's input clock runs
	// at 1193182 Hz, and 1193182/20 rounds to 59659.
	pitDivisor = 59659

	pitCommandChannel0Mode3BinaryLoHi = 0x36
)

func initPIT() {
	cpu.OutB(pitCommandPort, pitCommandChannel0Mode3BinaryLoHi)
	cpu.OutB(pitChannel0, byte(pitDivisor&0xFF))
	cpu.OutB(pitChannel0, byte(pitDivisor>>8))
}

var ticks uint64

// tick is called from the timer ISR once per ~50ms interrupt.
func tick() {
	atomic.AddUint64(&ticks, 1)
}

// Ticks returns the number of timer interrupts serviced since Init, useful
// as a coarse monotonic counter since there is no scheduler to hang a
// proper clock off of.
func Ticks() uint64 {
	return atomic.LoadUint64(&ticks)
}
