package syscall

import (
	"testing"
	"unsafe"

	"nyxkernel/kernel"
	"nyxkernel/kernel/elfload"
	"nyxkernel/kernel/mem"
	"nyxkernel/kernel/mem/vmm"
)

func bufAddr(b []byte) uint64 {
	return uint64(uintptr(unsafe.Pointer(&b[0])))
}

func TestSysReadStdinIsEOF(t *testing.T) {
	if got := sysRead(0); got != 0 {
		t.Fatalf("expected 0 (EOF); got %d", got)
	}
}

func TestSysReadOtherFDIsEBADF(t *testing.T) {
	if got := sysRead(3); got != -errBADF {
		t.Fatalf("expected -EBADF; got %d", got)
	}
}

func TestSysWriteCopiesToSinksAndReturnsCount(t *testing.T) {
	var captured []byte
	fake := &fakeWriter{fn: func(p []byte) { captured = append(captured, p...) }}
	SetOutputSinks(fake, fake)
	defer SetOutputSinks(nil, nil)

	msg := []byte("hello")
	n := sysWrite(1, bufAddr(msg), uint64(len(msg)))

	if n != int64(len(msg)) {
		t.Fatalf("expected %d; got %d", len(msg), n)
	}
	// both sinks are the same fake, so the message should appear twice
	if string(captured) != "hellohello" {
		t.Fatalf("expected both sinks written; got %q", captured)
	}
}

func TestSysWriteBadFD(t *testing.T) {
	msg := []byte("x")
	if got := sysWrite(5, bufAddr(msg), 1); got != -errBADF {
		t.Fatalf("expected -EBADF; got %d", got)
	}
}

func TestSysFstatZeroesAndSetsMode(t *testing.T) {
	buf := make([]byte, statSize)
	for i := range buf {
		buf[i] = 0xFF
	}

	if got := sysFstat(1, bufAddr(buf)); got != 0 {
		t.Fatalf("expected 0; got %d", got)
	}

	mode := *(*uint32)(unsafe.Pointer(&buf[stModeOffset]))
	if mode != charDeviceMode {
		t.Fatalf("expected st_mode %#o; got %#o", charDeviceMode, mode)
	}
	if buf[0] != 0 {
		t.Fatal("expected stat buffer zeroed outside st_mode")
	}
}

func TestSysFstatBadFD(t *testing.T) {
	if got := sysFstat(3, 0); got != -errBADF {
		t.Fatalf("expected -EBADF; got %d", got)
	}
}

func TestSysMmapBumpAllocates(t *testing.T) {
	prevCursor := mmapCursor
	defer func() { mmapCursor = prevCursor }()
	mmapCursor = elfload.MMapPoolBase

	a := sysMmap(0, uint64(mem.PageSize))
	b := sysMmap(0, uint64(mem.PageSize))

	if a != elfload.MMapPoolBase {
		t.Fatalf("expected first mmap at pool base; got %#x", a)
	}
	if b != a+int64(mem.PageSize) {
		t.Fatalf("expected second mmap one page later; got %#x", b)
	}
}

func TestSysMmapExhaustion(t *testing.T) {
	prevCursor := mmapCursor
	defer func() { mmapCursor = prevCursor }()
	mmapCursor = elfload.MMapPoolEnd

	if got := sysMmap(0, uint64(mem.PageSize)); got != -errNOMEM {
		t.Fatalf("expected -ENOMEM; got %d", got)
	}
}

func TestSysBrkReturnsCurrentWhenZero(t *testing.T) {
	prevCurrent, prevMapped := brkCurrent, brkMapped
	defer func() { brkCurrent, brkMapped = prevCurrent, prevMapped }()
	brkCurrent = elfload.BrkBase

	if got := sysBrk(0); got != int64(elfload.BrkBase) {
		t.Fatalf("expected current break; got %#x", got)
	}
}

func TestSysBrkGrowsWithinMappedRegion(t *testing.T) {
	prevCurrent, prevMapped, prevMapFn := brkCurrent, brkMapped, mapRegionFn
	defer func() { brkCurrent, brkMapped, mapRegionFn = prevCurrent, prevMapped, prevMapFn }()

	brkCurrent = elfload.BrkBase
	brkMapped = elfload.BrkBase + uintptr(elfload.BrkInitialSize)
	mapRegionFn = func(uintptr, mem.Size, vmm.PageTableEntryFlag) *kernel.Error {
		t.Fatal("should not need to grow the mapped region")
		return nil
	}

	target := elfload.BrkBase + uintptr(elfload.BrkInitialSize) - 8
	if got := sysBrk(uint64(target)); got != int64(target) {
		t.Fatalf("expected new break %#x; got %#x", target, got)
	}
}

func TestSysBrkGrowsMappedRegionWhenNeeded(t *testing.T) {
	prevCurrent, prevMapped, prevMapFn := brkCurrent, brkMapped, mapRegionFn
	defer func() { brkCurrent, brkMapped, mapRegionFn = prevCurrent, prevMapped, prevMapFn }()

	brkCurrent = elfload.BrkBase
	brkMapped = elfload.BrkBase + uintptr(elfload.BrkInitialSize)

	var grew bool
	mapRegionFn = func(addr uintptr, size mem.Size, flags vmm.PageTableEntryFlag) *kernel.Error {
		grew = true
		return nil
	}

	target := brkMapped + uintptr(mem.PageSize)
	if got := sysBrk(uint64(target)); got != int64(target) {
		t.Fatalf("expected new break %#x; got %#x", target, got)
	}
	if !grew {
		t.Fatal("expected mapRegionFn to be called to back the grown region")
	}
}

func TestSysBrkRejectsOutOfBounds(t *testing.T) {
	prevCurrent := brkCurrent
	defer func() { brkCurrent = prevCurrent }()
	brkCurrent = elfload.BrkBase + 100

	if got := sysBrk(uint64(elfload.BrkMax) + 1); got != int64(brkCurrent) {
		t.Fatalf("expected unchanged current break; got %#x", got)
	}
}

func TestSysSigaltstackFillsDisabledState(t *testing.T) {
	buf := make([]byte, 24)
	for i := range buf {
		buf[i] = 0xFF
	}

	if got := sysSigaltstack(bufAddr(buf)); got != 0 {
		t.Fatalf("expected 0; got %d", got)
	}

	flags := *(*uint32)(unsafe.Pointer(&buf[8]))
	if flags != ssDisable {
		t.Fatalf("expected ss_flags SS_DISABLE; got %d", flags)
	}
}

func TestSysArchPrctlGetFS(t *testing.T) {
	prevFS := fsBase
	defer func() { fsBase = prevFS }()
	fsBase = 0xDEADBEEF

	var out uint64
	if got := sysArchPrctl(archGetFS, uint64(uintptr(unsafe.Pointer(&out)))); got != 0 {
		t.Fatalf("expected 0; got %d", got)
	}
	if out != 0xDEADBEEF {
		t.Fatalf("expected fsBase written to user pointer; got %#x", out)
	}
}

func TestSysArchPrctlSetFSUsesMockedMSR(t *testing.T) {
	prevFS, prevFn := fsBase, wrmsrFn
	defer func() { fsBase, wrmsrFn = prevFS, prevFn }()

	var gotID uint32
	var gotVal uint64
	wrmsrFn = func(id uint32, val uint64) { gotID, gotVal = id, val }

	if got := sysArchPrctl(archSetFS, 0x1234); got != 0 {
		t.Fatalf("expected 0; got %d", got)
	}
	if fsBase != 0x1234 || gotID != msrFSBase || gotVal != 0x1234 {
		t.Fatalf("expected fsBase and MSR write updated; got fsBase=%#x id=%#x val=%#x", fsBase, gotID, gotVal)
	}
}

func TestSysArchPrctlUnknownCode(t *testing.T) {
	if got := sysArchPrctl(0xFFFF, 0); got != -errINVAL {
		t.Fatalf("expected -EINVAL; got %d", got)
	}
}

func TestSysGetrandomFillsBuffer(t *testing.T) {
	prevSeed := randSeed
	defer func() { randSeed = prevSeed }()
	randSeed = 1

	buf := make([]byte, 16)
	if got := sysGetrandom(bufAddr(buf), uint64(len(buf))); got != int64(len(buf)) {
		t.Fatalf("expected %d; got %d", len(buf), got)
	}

	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
		}
	}
	if allZero {
		t.Fatal("expected getrandom to actually fill the buffer")
	}
}

func TestSysWritevAccumulatesAcrossEntries(t *testing.T) {
	var captured []byte
	fake := &fakeWriter{fn: func(p []byte) { captured = append(captured, p...) }}
	SetOutputSinks(fake, nil)
	defer SetOutputSinks(nil, nil)

	part1 := []byte("ab")
	part2 := []byte("cd")
	iov := make([]byte, 32)
	*(*uint64)(unsafe.Pointer(&iov[0])) = bufAddr(part1)
	*(*uint64)(unsafe.Pointer(&iov[8])) = uint64(len(part1))
	*(*uint64)(unsafe.Pointer(&iov[16])) = bufAddr(part2)
	*(*uint64)(unsafe.Pointer(&iov[24])) = uint64(len(part2))

	n := sysWritev(1, bufAddr(iov), 2)
	if n != 4 {
		t.Fatalf("expected 4 total bytes written; got %d", n)
	}
	if string(captured) != "abcd" {
		t.Fatalf("expected \"abcd\"; got %q", captured)
	}
}

type fakeWriter struct {
	fn func([]byte)
}

func (f *fakeWriter) Write(p []byte) (int, error) {
	f.fn(p)
	return len(p), nil
}
