package console

// kernelFramebufferBase is the fixed virtual address the pixel framebuffer
// is mapped at. It sits well away from the kernel heap's own reserved
// range so the two eagerly-mapped regions never collide.
const kernelFramebufferBase = 0xFFFF_9800_0000_0000
