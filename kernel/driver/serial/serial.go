// Package serial drives the 16550 UART at the legacy COM1 port, used as the
// kernel's earliest and most reliable diagnostic sink: it works before the
// framebuffer console is mapped and keeps working after a fault the pixel
// console can no longer be trusted to paint.
package serial

import (
	"nyxkernel/kernel/cpu"
	ksync "nyxkernel/kernel/sync"
)

// COM1 is the standard legacy port base address for the first serial port.
const COM1 = 0x3F8

const (
	regData        = 0
	regIntEnable   = 1
	regFIFOCtrl    = 2
	regLineCtrl    = 3
	regModemCtrl   = 4
	regLineStatus  = 5
	lineStatusTHRE = 1 << 5
)

// outBFn/inBFn are mocked by tests, which run as an ordinary hosted process
// and have no I/O ports to address.
var (
	outBFn = cpu.OutB
	inBFn  = cpu.InB
)

// Port is a single 16550-compatible UART. The zero value is not usable;
// construct one with New.
type Port struct {
	base uint16
	lock ksync.Spinlock
}

// New programs the UART at base for 38400 baud, 8 data bits, no parity, one
// stop bit, and enables its receive FIFO.
func New(base uint16) *Port {
	outBFn(base+regIntEnable, 0x00) // disable UART interrupts
	outBFn(base+regLineCtrl, 0x80)  // enable DLAB to set the baud rate divisor
	outBFn(base+regData, 0x03)      // divisor low byte: 38400 baud
	outBFn(base+regIntEnable, 0x00) // divisor high byte
	outBFn(base+regLineCtrl, 0x03)  // 8 bits, no parity, one stop bit; clear DLAB
	outBFn(base+regFIFOCtrl, 0xC7)  // enable FIFO, clear it, 14-byte threshold
	outBFn(base+regModemCtrl, 0x0B) // IRQs enabled (unused here), RTS/DTR set

	return &Port{base: base}
}

// WriteByte blocks until the transmit holding register is empty, then writes
// b. It implements io.ByteWriter.
func (p *Port) WriteByte(b byte) error {
	p.lock.Acquire()
	defer p.lock.Release()

	for !p.transmitHoldingEmpty() {
	}
	outBFn(p.base+regData, b)
	return nil
}

func (p *Port) transmitHoldingEmpty() bool {
	return inBFn(p.base+regLineStatus)&lineStatusTHRE != 0
}

// Write implements io.Writer by writing every byte of buf in turn, expanding
// a bare '\n' into "\r\n" since the UART has no line discipline of its own.
// It never returns a partial write or an error: the only failure mode of a
// polled UART write is hanging, not erroring.
func (p *Port) Write(buf []byte) (int, error) {
	for _, b := range buf {
		if b == '\n' {
			_ = p.WriteByte('\r')
		}
		_ = p.WriteByte(b)
	}
	return len(buf), nil
}
