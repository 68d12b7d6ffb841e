// Package vjoy owns the synthesized joystick: creation with the exact
// identity of real THEC64 joystick hardware, event emission, and
// destruction. The console firmware gates recognition on the identity
// fields, so they must match the real device bit for bit.
package vjoy

import (
	"fmt"
	"sync"
	"unsafe"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

const (
	// DeviceName is the advertised display name of the virtual stick.
	DeviceName = "Retro Games LTD THEC64 Joystick"

	busUSB    = 0x0003
	vendorID  = 0x1c59
	productID = 0x0023
	versionID = 0x0110

	AxisMin    = 0
	AxisMax    = 255
	AxisCenter = 127
	AxisFlat   = 15

	NumButtons = 8

	// Per-button MSC_SCAN companion value is scanBase + button index.
	scanBase = 0x90001
)

// The real hardware reports five absolute axes even though only X and Y
// ever move.
var axisCodes = []evdev.EvCode{
	evdev.ABS_X, evdev.ABS_Y, evdev.ABS_Z, evdev.ABS_RX, evdev.ABS_RY,
}

// Joystick is the single synthesized output device.
type Joystick struct {
	fd        int
	closeOnce sync.Once
}

// Create opens /dev/uinput and builds the virtual joystick. On success
// all axes have been emitted at center and flushed, so the device is
// never observed in an undefined position.
func Create() (*Joystick, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s (is the uinput module loaded?): %w", uinputPath, err)
	}

	setup := func() error {
		for _, ev := range []uintptr{uintptr(evdev.EV_KEY), uintptr(evdev.EV_ABS), uintptr(evdev.EV_SYN), uintptr(evdev.EV_MSC)} {
			if err := ioctl(fd, uiSetEvBit, ev); err != nil {
				return fmt.Errorf("UI_SET_EVBIT %d: %w", ev, err)
			}
		}
		// BTN_TRIGGER..BTN_BASE6, matching the real device's 12-button
		// contiguous range even though only 8 are driven.
		for code := evdev.BTN_TRIGGER; code <= evdev.BTN_BASE6; code++ {
			if err := ioctl(fd, uiSetKeyBit, uintptr(code)); err != nil {
				return fmt.Errorf("UI_SET_KEYBIT %d: %w", code, err)
			}
		}
		for _, code := range axisCodes {
			if err := ioctl(fd, uiSetAbsBit, uintptr(code)); err != nil {
				return fmt.Errorf("UI_SET_ABSBIT %d: %w", code, err)
			}
		}
		if err := ioctl(fd, uiSetMscBit, uintptr(evdev.MSC_SCAN)); err != nil {
			return fmt.Errorf("UI_SET_MSCBIT: %w", err)
		}

		var dev uinputUserDev
		copy(dev.Name[:], DeviceName)
		dev.ID = inputID{BusType: busUSB, Vendor: vendorID, Product: productID, Version: versionID}
		for _, code := range axisCodes {
			dev.AbsMin[code] = AxisMin
			dev.AbsMax[code] = AxisMax
			dev.AbsFlat[code] = AxisFlat
		}
		if err := writeStruct(fd, unsafe.Pointer(&dev), unsafe.Sizeof(dev)); err != nil {
			return fmt.Errorf("write uinput_user_dev: %w", err)
		}
		if err := ioctl(fd, uiDevCreate, 0); err != nil {
			return fmt.Errorf("UI_DEV_CREATE: %w", err)
		}
		return nil
	}

	if err := setup(); err != nil {
		unix.Close(fd)
		return nil, err
	}

	j := &Joystick{fd: fd}
	for _, code := range axisCodes {
		if err := j.emit(uint16(evdev.EV_ABS), uint16(code), AxisCenter); err != nil {
			j.Close()
			return nil, fmt.Errorf("center axes: %w", err)
		}
	}
	if err := j.sync(); err != nil {
		j.Close()
		return nil, fmt.Errorf("flush initial state: %w", err)
	}
	return j, nil
}

func (j *Joystick) emit(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	return writeStruct(j.fd, unsafe.Pointer(&ev), unsafe.Sizeof(ev))
}

func (j *Joystick) sync() error {
	return j.emit(uint16(evdev.EV_SYN), uint16(evdev.SYN_REPORT), 0)
}

// Axes emits both primary axes followed by one synchronization event.
func (j *Joystick) Axes(x, y int32) error {
	if err := j.emit(uint16(evdev.EV_ABS), uint16(evdev.ABS_X), x); err != nil {
		return err
	}
	if err := j.emit(uint16(evdev.EV_ABS), uint16(evdev.ABS_Y), y); err != nil {
		return err
	}
	return j.sync()
}

// Button emits a press or release for virtual button i (0..7) together
// with its scan-code companion, then flushes.
func (j *Joystick) Button(i int, pressed bool) error {
	var value int32
	if pressed {
		value = 1
	}
	if err := j.emit(uint16(evdev.EV_MSC), uint16(evdev.MSC_SCAN), int32(scanBase+i)); err != nil {
		return err
	}
	if err := j.emit(uint16(evdev.EV_KEY), uint16(evdev.BTN_TRIGGER)+uint16(i), value); err != nil {
		return err
	}
	return j.sync()
}

// Neutral releases every button and centers both axes, flushing once.
// Used on suspend and during shutdown so the console never sees a stuck
// input.
func (j *Joystick) Neutral() error {
	var firstErr error
	for i := 0; i < NumButtons; i++ {
		if err := j.emit(uint16(evdev.EV_KEY), uint16(evdev.BTN_TRIGGER)+uint16(i), 0); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := j.emit(uint16(evdev.EV_ABS), uint16(evdev.ABS_X), AxisCenter); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := j.emit(uint16(evdev.EV_ABS), uint16(evdev.ABS_Y), AxisCenter); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := j.sync(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Close destroys the virtual device. Safe to call more than once.
func (j *Joystick) Close() {
	j.closeOnce.Do(func() {
		ioctl(j.fd, uiDevDestroy, 0)
		unix.Close(j.fd)
	})
}

// AxisPair maps a clamped direction sum to wire axis values:
// -1 -> 0, 0 -> 127, 1 -> 255.
func AxisPair(dx, dy int) (x, y int32) {
	return axisValue(dx), axisValue(dy)
}

func axisValue(sign int) int32 {
	switch {
	case sign < 0:
		return AxisMin
	case sign > 0:
		return AxisMax
	default:
		return AxisCenter
	}
}
