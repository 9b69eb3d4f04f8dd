// Package showfile encodes and parses the two binary artifacts consumed by
// the costume playback firmware:
//
//   - control.dat: version, part counts, LED strip lengths and frame starts.
//   - frame.dat: version, then per frame the start time, fade flag, one GRB
//     sample per fiber part, one GRB sample per LED of every strip, and a
//     reserved checksum.
//
// Integers are little endian. Samples are written green, red, blue, which is
// how the strips are wired.
package showfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Version is written as the first two bytes of both files.
var Version = [2]byte{0x00, 0x00}

// MaxCount is the ceiling of every single-byte count or length field.
const MaxCount = math.MaxUint8

var (
	// ErrFieldOverflow is returned when a value does not fit its field.
	ErrFieldOverflow = errors.New("value does not fit wire field")
	// ErrTruncated is returned when a buffer ends before a complete record.
	ErrTruncated = errors.New("truncated buffer")
	// ErrBadVersion is returned when a buffer does not start with Version.
	ErrBadVersion = errors.New("unsupported version")
)

// Pixel is one resolved output color.
type Pixel struct {
	R, G, B uint8
}

// ControlHeader is the content of control.dat.
type ControlHeader struct {
	FiberCount int
	LEDLengths []int
	Starts     []uint32
}

// Frame is one compiled frame of frame.dat. Fibers and LEDs are in channel
// order.
type Frame struct {
	Start    uint32
	Fade     bool
	Fibers   []Pixel
	LEDs     [][]Pixel
	Checksum uint32
}

// Validate checks that every single-byte field of h is in range.
func (h ControlHeader) Validate() error {
	if h.FiberCount < 0 || h.FiberCount > MaxCount {
		return fmt.Errorf("%w: optical fiber count %d", ErrFieldOverflow, h.FiberCount)
	}
	if len(h.LEDLengths) > MaxCount {
		return fmt.Errorf("%w: LED strip count %d", ErrFieldOverflow, len(h.LEDLengths))
	}
	for i, n := range h.LEDLengths {
		if n < 0 || n > MaxCount {
			return fmt.Errorf("%w: LED strip %d length %d", ErrFieldOverflow, i, n)
		}
	}
	if uint64(len(h.Starts)) > math.MaxUint32 {
		return fmt.Errorf("%w: frame count %d", ErrFieldOverflow, len(h.Starts))
	}
	return nil
}

// EncodeControl serialises h as control.dat.
func EncodeControl(h ControlHeader) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 2+2+len(h.LEDLengths)+4+4*len(h.Starts))
	buf = append(buf, Version[:]...)
	buf = append(buf, uint8(h.FiberCount), uint8(len(h.LEDLengths)))
	for _, n := range h.LEDLengths {
		buf = append(buf, uint8(n))
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(h.Starts)))
	for _, s := range h.Starts {
		buf = binary.LittleEndian.AppendUint32(buf, s)
	}
	return buf, nil
}

// FrameSize returns the encoded size of one frame with the given layout.
func FrameSize(fiberCount int, ledLengths []int) int {
	n := 4 + 1 + 3*fiberCount + 4
	for _, l := range ledLengths {
		n += 3 * l
	}
	return n
}

// EncodeFrames serialises frames as frame.dat.
func EncodeFrames(frames []Frame) []byte {
	size := len(Version)
	if len(frames) > 0 {
		size += len(frames) * FrameSize(len(frames[0].Fibers), stripLengths(frames[0].LEDs))
	}

	buf := make([]byte, 0, size)
	buf = append(buf, Version[:]...)
	for _, f := range frames {
		buf = AppendFrame(buf, f)
	}
	return buf
}

// AppendFrame appends the encoding of f to buf.
func AppendFrame(buf []byte, f Frame) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, f.Start)
	if f.Fade {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	for _, p := range f.Fibers {
		buf = appendGRB(buf, p)
	}
	for _, strip := range f.LEDs {
		for _, p := range strip {
			buf = appendGRB(buf, p)
		}
	}
	return binary.LittleEndian.AppendUint32(buf, f.Checksum)
}

func appendGRB(buf []byte, p Pixel) []byte {
	return append(buf, p.G, p.R, p.B)
}

func stripLengths(strips [][]Pixel) []int {
	lens := make([]int, len(strips))
	for i, s := range strips {
		lens[i] = len(s)
	}
	return lens
}

// ParseControl decodes control.dat.
func ParseControl(buf []byte) (ControlHeader, error) {
	var h ControlHeader
	if err := checkVersion(buf); err != nil {
		return h, err
	}
	off := len(Version)

	if len(buf) < off+2 {
		return h, fmt.Errorf("%w: missing part counts", ErrTruncated)
	}
	h.FiberCount = int(buf[off])
	strips := int(buf[off+1])
	off += 2

	if len(buf) < off+strips+4 {
		return h, fmt.Errorf("%w: missing strip lengths or frame count", ErrTruncated)
	}
	h.LEDLengths = make([]int, strips)
	for i := range h.LEDLengths {
		h.LEDLengths[i] = int(buf[off+i])
	}
	off += strips

	count := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if uint64(len(buf)-off) != 4*uint64(count) {
		return h, fmt.Errorf("%w: want %d frame starts, have %d bytes", ErrTruncated, count, len(buf)-off)
	}
	h.Starts = make([]uint32, count)
	for i := range h.Starts {
		h.Starts[i] = binary.LittleEndian.Uint32(buf[off:])
		off += 4
	}
	return h, nil
}

// ParseFrames decodes frame.dat. The layout is not self-describing, so the
// fiber count and strip lengths come from the matching control.dat.
func ParseFrames(buf []byte, fiberCount int, ledLengths []int) ([]Frame, error) {
	if err := checkVersion(buf); err != nil {
		return nil, err
	}
	body := buf[len(Version):]
	size := FrameSize(fiberCount, ledLengths)
	if len(body)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of frame size %d", ErrTruncated, len(body), size)
	}

	frames := make([]Frame, 0, len(body)/size)
	for off := 0; off < len(body); off += size {
		rec := body[off : off+size]
		f := Frame{
			Start: binary.LittleEndian.Uint32(rec),
			Fade:  rec[4] != 0,
		}
		p := 5
		f.Fibers = make([]Pixel, fiberCount)
		for i := range f.Fibers {
			f.Fibers[i] = readGRB(rec[p:])
			p += 3
		}
		f.LEDs = make([][]Pixel, len(ledLengths))
		for i, n := range ledLengths {
			strip := make([]Pixel, n)
			for j := range strip {
				strip[j] = readGRB(rec[p:])
				p += 3
			}
			f.LEDs[i] = strip
		}
		f.Checksum = binary.LittleEndian.Uint32(rec[p:])
		frames = append(frames, f)
	}
	return frames, nil
}

func readGRB(b []byte) Pixel {
	return Pixel{G: b[0], R: b[1], B: b[2]}
}

func checkVersion(buf []byte) error {
	if len(buf) < len(Version) {
		return fmt.Errorf("%w: missing version", ErrTruncated)
	}
	if buf[0] != Version[0] || buf[1] != Version[1] {
		return fmt.Errorf("%w: %#02x %#02x", ErrBadVersion, buf[0], buf[1])
	}
	return nil
}
