// Package early provides the Printf entry point used by code that runs
// before any console sink has been wired up (GDT/IDT/PIC/PFA bring-up). It
// used to carry its own byte-at-a-time formatter, duplicating kfmt's; now
// that kfmt.Printf itself buffers into a ring buffer until SetOutputSink is
// called, early.Printf is a thin alias so call sites written during bring-up
// don't need to change once a sink exists.
package early

import "nyxkernel/kernel/kfmt"

// Printf formats according to kfmt's restricted verb set and writes to
// whatever sink kfmt currently has configured, buffering in a ring buffer if
// none has been set yet.
func Printf(format string, args ...interface{}) {
	kfmt.Printf(format, args...)
}
