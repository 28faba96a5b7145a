package kernel

import (
	"io"
	"unsafe"

	"nyxkernel/kernel/boot"
	"nyxkernel/kernel/driver/console"
	"nyxkernel/kernel/driver/console/font"
	"nyxkernel/kernel/driver/serial"
	"nyxkernel/kernel/elfload"
	"nyxkernel/kernel/gdt"
	"nyxkernel/kernel/heap"
	"nyxkernel/kernel/idt"
	"nyxkernel/kernel/kfmt"
	"nyxkernel/kernel/mem/pmm"
	"nyxkernel/kernel/mem/vmm"
	"nyxkernel/kernel/pic"
	"nyxkernel/kernel/syscall"
	"nyxkernel/kernel/userimage"
)

// Kmain is invoked by the rt0 trampoline in cmd/kernel with a pointer to the
// bootloader-constructed BootInfo. It brings the core up in the fixed order
// every subsystem's doc comment assumes, loads the embedded user program,
// and transitions to ring 3. It never returns.
func Kmain(info *boot.BootInfo) {
	vmm.SetHHDMOffset(info.HHDMOffset)

	gdt.Init()
	idt.Init()
	pic.Init()

	com1 := serial.New(serial.COM1)
	kfmt.SetOutputSink(com1)

	kfmt.Printf("booting: hhdm=%x maxphys=%x\n", info.HHDMOffset, info.MaxPhysicalAddress)

	if err := pmm.Init(info); err != nil {
		kfmt.Panic(err)
	}
	vmm.Init(info.HHDMOffset, pmm.AllocFrame)
	if err := heap.Init(); err != nil {
		kfmt.Panic(err)
	}

	var textConsole *console.TextConsole
	if fb, err := console.NewFramebufferConsole(info.Framebuffer); err == nil {
		fb.SetFont(font.BestFit(info.Framebuffer.Width, info.Framebuffer.Height))
		textConsole = console.NewTextConsole(fb, 0xFFFFFF, 0x000000)
	}

	var consoleSink io.Writer
	if textConsole != nil {
		consoleSink = textConsole
	}
	syscall.SetOutputSinks(consoleSink, io.Writer(com1))

	as, err := vmm.NewAddressSpace()
	if err != nil {
		kfmt.Panic(err)
	}
	as.CloneKernelHalf()

	img, err := elfload.Load(userimage.Payload, as)
	if err != nil {
		kfmt.Panic(err)
	}

	userRSP, err := elfload.BuildUserStack(as, img)
	if err != nil {
		kfmt.Panic(err)
	}

	gdt.SetKernelStack(uintptr(unsafe.Pointer(&rsp0Stack[0])) + rsp0StackSize)

	as.Activate()
	syscall.Init()

	entry := img.EntryPoint
	cs := uintptr(gdt.UserCodeSelectorRPL3)
	ss := uintptr(gdt.UserDataSelectorRPL3)
	elfload.EnterUserMode(entry, userRSP, cs, ss)
}

// rsp0Stack is TSS.RSP0: the stack the CPU switches to whenever ring 3
// traps back into ring 0 (interrupt, exception or syscall) once the user
// program is running. Kmain itself keeps running on the bootloader's
// initial kernel stack right up until EnterUserMode hands off; this one is
// never touched before that point.
const rsp0StackSize = 4096 * 5

var rsp0Stack [rsp0StackSize]byte
