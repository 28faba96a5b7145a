package syscall

// Errno magnitudes for syscalls that fail. Handlers return the negated value
// (for example -errBADF), and dispatch hands it back to the trampoline
// unchanged.
const (
	errBADF  = 9
	errNOMEM = 12
	errNOTTY = 25
	errINVAL = 22
	errNOSYS = 38
)
