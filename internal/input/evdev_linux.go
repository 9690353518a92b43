//go:build linux

package input

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	evKey       = 0x01
	keyDown     = 1
	procDevices = "/proc/bus/input/devices"
	inputDir    = "/dev/input/"
)

// struct input_event: a timeval followed by type, code and value.
var timevalSize = int(unsafe.Sizeof(unix.Timeval{}))

type evdevDevice struct {
	path string
	name string
	f    *os.File
	buf  []byte
}

func (d *evdevDevice) Name() string { return d.name }

func (d *evdevDevice) ReadKey() (KeyEvent, error) {
	for {
		if _, err := io.ReadFull(d.f, d.buf); err != nil {
			return KeyEvent{}, err
		}
		typ := binary.NativeEndian.Uint16(d.buf[timevalSize:])
		if typ != evKey {
			continue
		}
		code := binary.NativeEndian.Uint16(d.buf[timevalSize+2:])
		value := int32(binary.NativeEndian.Uint32(d.buf[timevalSize+4:]))
		// value 2 is autorepeat, which is not a fresh press
		return KeyEvent{Key: KeyName(code), Down: value == keyDown}, nil
	}
}

func (d *evdevDevice) Close() error { return d.f.Close() }

type keyboardInfo struct {
	path string
	name string
}

// findKeyboards lists event handlers in /proc/bus/input/devices that report
// key capabilities.
func findKeyboards(r io.Reader) []keyboardInfo {
	var (
		out     []keyboardInfo
		cur     keyboardInfo
		hasKeys bool
	)
	flush := func() {
		if hasKeys && cur.path != "" {
			out = append(out, cur)
		}
		cur = keyboardInfo{}
		hasKeys = false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "N: Name="):
			cur.name = strings.Trim(strings.TrimPrefix(line, "N: Name="), `"`)
		case strings.HasPrefix(line, "H: Handlers="):
			for _, h := range strings.Fields(strings.TrimPrefix(line, "H: Handlers=")) {
				if strings.HasPrefix(h, "event") {
					cur.path = inputDir + h
				}
			}
		case strings.HasPrefix(line, "B: KEY="):
			// a bare "0" bitmap means no keys at all
			hasKeys = strings.TrimSpace(strings.TrimPrefix(line, "B: KEY=")) != "0"
		}
	}
	flush()
	return out
}

// OpenKeyboards opens every readable device with key capabilities.
func OpenKeyboards(log *slog.Logger) ([]Device, error) {
	f, err := os.Open(procDevices)
	if err != nil {
		return nil, fmt.Errorf("enumerate input devices: %w", err)
	}
	infos := findKeyboards(f)
	f.Close()

	var out []Device
	for _, info := range infos {
		// non-blocking so the runtime poller can interrupt reads on Close
		df, err := os.OpenFile(info.path, os.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			log.Debug("skipping input device", "path", info.path, "name", info.name, "err", err)
			continue
		}
		name := info.name
		if name == "" {
			name = info.path
		}
		out = append(out, &evdevDevice{
			path: info.path,
			name: name,
			f:    df,
			buf:  make([]byte, timevalSize+8),
		})
		log.Info("opened input device", "path", info.path, "name", name)
	}
	if len(out) == 0 {
		return nil, ErrNoDevices
	}
	return out, nil
}
