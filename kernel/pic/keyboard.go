package pic

const keyboardDataPort = 0x60

// scancodeBufSize matches the original kernel's static keyboard buffer.
const scancodeBufSize = 64

// scancodeBuf is a single-producer (the keyboard ISR), single-consumer
// (whatever polls PopScancode) ring buffer. No lock guards it: the producer
// only ever runs with interrupts disabled on this single logical processor,
// so it can never preempt itself, and the consumer only moves tail, never
// head — the two indices are only ever written by their own side.
var (
	scancodeBuf       [scancodeBufSize]uint8
	scancodeHead      uint32
	scancodeTail      uint32
)

// pushScancode appends a scancode to the buffer, silently dropping it if
// the buffer is full. Called only from keyboardHandler.
func pushScancode(code uint8) {
	next := (scancodeHead + 1) % scancodeBufSize
	if next == scancodeTail {
		return // buffer full; drop
	}
	scancodeBuf[scancodeHead] = code
	scancodeHead = next
}

// PopScancode removes and returns the oldest buffered scancode, or (0,
// false) if the buffer is empty.
func PopScancode() (uint8, bool) {
	if scancodeHead == scancodeTail {
		return 0, false
	}
	code := scancodeBuf[scancodeTail]
	scancodeTail = (scancodeTail + 1) % scancodeBufSize
	return code, true
}
