//go:build linux

package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/valerio/go-joymap/joymap/input/event"
)

const (
	jsiocgAxes    = 0x80016a11
	jsiocgButtons = 0x80016a12
	jsiocgAxmap   = 0x80406a32
	jsNameLength  = 128
	jsiocgName    = 0x80006a13 + (jsNameLength << 16)
)

// Joystick reads a /dev/input/js* device through the Linux joystick API
type Joystick struct {
	path   string
	device string
}

// NewJoystick reads path, events carry the device file name (js0, js1, ...) as device
func NewJoystick(path string) *Joystick {
	return &Joystick{path: path, device: filepath.Base(path)}
}

func (j *Joystick) Name() string {
	return "joystick:" + j.path
}

func (j *Joystick) Run(ctx context.Context, out chan<- event.Event) error {
	// non blocking so that the runtime poller owns the descriptor and Close
	// wakes up a pending Read
	fd, err := unix.Open(j.path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", j.path, err)
	}
	f := os.NewFile(uintptr(fd), j.path)
	defer f.Close()

	info, err := jsInfo(fd)
	if err != nil {
		return err
	}
	slog.Info("Opened joystick", "path", j.path, "name", info.name, "axes", info.axes, "buttons", info.buttons)

	stop := context.AfterFunc(ctx, func() { f.Close() })
	defer stop()

	tr := newJSTranslator(j.device, info.axmap)
	buf := make([]byte, jsEventSize*64)
	for {
		n, err := f.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, os.ErrClosed) {
				return ctx.Err()
			}
			return fmt.Errorf("read %s: %w", j.path, err)
		}

		now := time.Now()
		for off := 0; off+jsEventSize <= n; off += jsEventSize {
			evt, ok := tr.translate(decodeJSEvent(buf[off:off+jsEventSize]), now)
			if !ok {
				continue
			}
			if !send(ctx, out, evt) {
				return ctx.Err()
			}
		}
	}
}

type joystickInfo struct {
	name    string
	axes    uint8
	buttons uint8
	axmap   []uint8
}

func jsInfo(fd int) (joystickInfo, error) {
	var info joystickInfo

	name := make([]byte, jsNameLength)
	if err := ioctl(fd, jsiocgName, unsafe.Pointer(&name[0])); err != nil {
		return info, fmt.Errorf("joystick name: %w", err)
	}
	info.name = strings.TrimRight(string(name), "\x00")

	if err := ioctl(fd, jsiocgAxes, unsafe.Pointer(&info.axes)); err != nil {
		return info, fmt.Errorf("joystick axes: %w", err)
	}
	if err := ioctl(fd, jsiocgButtons, unsafe.Pointer(&info.buttons)); err != nil {
		return info, fmt.Errorf("joystick buttons: %w", err)
	}

	var axmap [64]uint8
	if err := ioctl(fd, jsiocgAxmap, unsafe.Pointer(&axmap[0])); err != nil {
		return info, fmt.Errorf("joystick axis map: %w", err)
	}
	info.axmap = append([]uint8(nil), axmap[:info.axes]...)
	return info, nil
}

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Device describes an input device node
type Device struct {
	Path string
	Name string
}

// ListJoysticks returns the joystick API device nodes and their names
func ListJoysticks() ([]Device, error) {
	paths, err := filepath.Glob("/dev/input/js*")
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		d := Device{Path: p}
		if fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0); err == nil {
			if info, err := jsInfo(fd); err == nil {
				d.Name = info.name
			}
			unix.Close(fd)
		}
		devices = append(devices, d)
	}
	return devices, nil
}
