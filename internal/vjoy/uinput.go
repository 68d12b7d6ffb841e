package vjoy

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// uinput protocol pieces, translated from <linux/uinput.h>. The device
// is built through the legacy uinput_user_dev write because that is the
// only interface that lets us declare per-axis min/max/flat together
// with the full bus/vendor/product/version identity.
const (
	uinputPath        = "/dev/uinput"
	uinputMaxNameSize = 80
	absSize           = 64

	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiSetAbsBit = 0x40045567
	uiSetMscBit = 0x40045568
)

type inputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name         [uinputMaxNameSize]byte
	ID           inputID
	FFEffectsMax uint32
	AbsMax       [absSize]int32
	AbsMin       [absSize]int32
	AbsFuzz      [absSize]int32
	AbsFlat      [absSize]int32
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

func ioctl(fd int, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func writeStruct(fd int, p unsafe.Pointer, size uintptr) error {
	buf := unsafe.Slice((*byte)(p), size)
	_, err := unix.Write(fd, buf)
	return err
}
