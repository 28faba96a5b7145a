package elfload

// EnterUserMode builds an IRETQ trap-return frame targeting userCS:entryRIP
// running on userSS:userRSP, with RFLAGS set to IF|reserved, loads userSS
// into DS/ES, clears every general-purpose register, and executes iretq.
// It never returns to its caller; the implementation is in
// transition_amd64.s.
func EnterUserMode(entryRIP, userRSP, userCS, userSS uintptr)
