package vmm

import "nyxkernel/kernel/mem"

// Page describes a virtual memory page index. Page i corresponds to the
// virtual address i*mem.PageSize.
type Page uintptr

// Address returns the virtual address for this page.
func (p Page) Address() uintptr {
	return uintptr(p) << mem.PageShift
}

// PageFromAddress returns the page that contains the given virtual address.
func PageFromAddress(virtAddr uintptr) Page {
	return Page(virtAddr >> mem.PageShift)
}
