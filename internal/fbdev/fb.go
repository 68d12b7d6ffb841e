// Package fbdev renders the remap UI straight onto the Linux
// framebuffer console. Drawing happens on an in-memory back buffer;
// Present copies it to the mapped display memory in one pass.
package fbdev

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/unix"
)

const fbPath = "/dev/fb0"

const (
	fbioGetVScreenInfo = 0x4600
	fbioPanDisplay     = 0x4606
	fbioGetFScreenInfo = 0x4602
)

// fb_var_screeninfo, from <linux/fb.h>.
type bitField struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

type varScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          bitField
	Green        bitField
	Blue         bitField
	Transp       bitField
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HSyncLen     uint32
	VSyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

// fb_fix_screeninfo, from <linux/fb.h>.
type fixScreenInfo struct {
	ID           [16]byte
	SMemStart    uintptr
	SMemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MMIOStart    uintptr
	MMIOLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// Device is an open framebuffer with an RGBA back buffer.
type Device struct {
	fd         int
	mem        []byte
	img        *image.RGBA
	width      int
	height     int
	lineLength int
}

func ioctlPtr(fd int, req uintptr, p unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(p))
	if errno != 0 {
		return errno
	}
	return nil
}

// Open maps the framebuffer. Fails when there is no display surface or
// the pixel format is not the 32bpp layout the console uses.
func Open() (*Device, error) {
	fd, err := unix.Open(fbPath, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fbPath, err)
	}

	var vinfo varScreenInfo
	var finfo fixScreenInfo
	if err := ioctlPtr(fd, fbioGetVScreenInfo, unsafe.Pointer(&vinfo)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("FBIOGET_VSCREENINFO: %w", err)
	}
	if err := ioctlPtr(fd, fbioGetFScreenInfo, unsafe.Pointer(&finfo)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("FBIOGET_FSCREENINFO: %w", err)
	}
	if vinfo.BitsPerPixel != 32 {
		unix.Close(fd)
		return nil, fmt.Errorf("unsupported framebuffer depth %d bpp", vinfo.BitsPerPixel)
	}

	// Pan back to page 0: the companion uses EGL double buffering and
	// can leave yoffset pointing at the invisible page.
	vinfo.XOffset = 0
	vinfo.YOffset = 0
	ioctlPtr(fd, fbioPanDisplay, unsafe.Pointer(&vinfo))

	size := int(finfo.LineLength) * int(vinfo.YRes)
	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap framebuffer: %w", err)
	}

	return &Device{
		fd:         fd,
		mem:        mem,
		img:        image.NewRGBA(image.Rect(0, 0, int(vinfo.XRes), int(vinfo.YRes))),
		width:      int(vinfo.XRes),
		height:     int(vinfo.YRes),
		lineLength: int(finfo.LineLength),
	}, nil
}

// Size returns the visible resolution.
func (d *Device) Size() (int, int) { return d.width, d.height }

// Present copies the back buffer into display memory, converting RGBA
// to the framebuffer's BGRA word order.
func (d *Device) Present() error {
	for y := 0; y < d.height; y++ {
		src := d.img.Pix[y*d.img.Stride : y*d.img.Stride+d.width*4]
		dst := d.mem[y*d.lineLength : y*d.lineLength+d.width*4]
		for x := 0; x < d.width; x++ {
			si := x * 4
			dst[si] = src[si+2]
			dst[si+1] = src[si+1]
			dst[si+2] = src[si]
			dst[si+3] = 0xff
		}
	}
	return nil
}

// Close unmaps and releases the framebuffer.
func (d *Device) Close() {
	if d.mem != nil {
		unix.Munmap(d.mem)
		d.mem = nil
	}
	if d.fd >= 0 {
		unix.Close(d.fd)
		d.fd = -1
	}
}
