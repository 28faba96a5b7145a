// Package pic drives the legacy 8259 PIC pair and 8254 PIT: remapping the
// two chained PICs so hardware IRQs don't collide with CPU exception
// vectors, masking every line except the timer and keyboard, and
// programming the PIT for a steady ~20 Hz tick.
package pic

import (
	"nyxkernel/kernel/cpu"
	"nyxkernel/kernel/idt"
)

const (
	master        = 0x20
	masterCommand = master
	masterData    = master + 1

	slave        = 0xA0
	slaveCommand = slave
	slaveData    = slave + 1

	icw1Init       = 0x11 // edge-triggered, cascade mode, ICW4 follows
	icw4_8086      = 0x01
	eoiCommand     = 0x20
	slaveIRQOnPIC1 = 2 // the slave PIC is wired to master IRQ line 2
)

// Offsets match idt.VectorTimer/idt.VectorKeyboard: IRQ0 (timer) and IRQ1
// (keyboard) land at vector 32/33, with the slave PIC's 8 lines following
// immediately after the master's.
const (
	masterOffset = idt.IRQOffset
	slaveOffset  = idt.IRQOffset + 8
)

// masterMask and slaveMask disable every IRQ line except timer (IRQ0) and
// keyboard (IRQ1).
const masterMask = 0b1111_1100
const slaveMask = 0b1111_1111

// Init remaps both PICs above the CPU exception range, masks every line but
// the timer and keyboard, and registers their idt handlers. It must run
// after idt.Init.
func Init() {
	cpu.DisableInterrupts()
	defer cpu.EnableInterrupts()

	// ICW1: begin initialization sequence on both controllers.
	cpu.OutB(masterCommand, icw1Init)
	cpu.IOWait()
	cpu.OutB(slaveCommand, icw1Init)
	cpu.IOWait()

	// ICW2: vector offsets.
	cpu.OutB(masterData, masterOffset)
	cpu.IOWait()
	cpu.OutB(slaveData, slaveOffset)
	cpu.IOWait()

	// ICW3: tell the master which IRQ line the slave lives on, and tell
	// the slave its own cascade identity.
	cpu.OutB(masterData, 1<<slaveIRQOnPIC1)
	cpu.IOWait()
	cpu.OutB(slaveData, slaveIRQOnPIC1)
	cpu.IOWait()

	// ICW4: 8086 mode.
	cpu.OutB(masterData, icw4_8086)
	cpu.IOWait()
	cpu.OutB(slaveData, icw4_8086)
	cpu.IOWait()

	cpu.OutB(masterData, masterMask)
	cpu.OutB(slaveData, slaveMask)

	idt.SetHandler(idt.VectorTimer, timerHandler)
	idt.SetHandler(idt.VectorKeyboard, keyboardHandler)

	initPIT()
}

// eoi acknowledges an interrupt so the PIC delivers further ones. Any IRQ
// serviced by the slave also requires acknowledging the master, since it
// delivered the cascade.
func eoi(irq uint8) {
	if irq >= 8 {
		cpu.OutB(slaveCommand, eoiCommand)
	}
	cpu.OutB(masterCommand, eoiCommand)
}

func timerHandler(vector uint8, errCode uint64, frame *idt.Frame, regs *idt.Regs) {
	tick()
	eoi(0)
}

func keyboardHandler(vector uint8, errCode uint64, frame *idt.Frame, regs *idt.Regs) {
	scancode := cpu.InB(keyboardDataPort)
	pushScancode(scancode)
	eoi(1)
}
