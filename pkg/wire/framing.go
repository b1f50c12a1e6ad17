// Package wire implements the length-delimited transport framing the
// reliable network layer uses: a 4-byte big-endian length prefix, one
// flag byte (0x00 raw, 0x01 zlib-compressed), then the payload. The
// underlying socket transport itself is out of scope; this package only
// frames/unframes byte slices the transport hands us.
package wire

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"io"
)

// MaxFrameLen bounds a single frame's payload.
const MaxFrameLen = 64 << 20 // 64 MiB

const (
	flagRaw  byte = 0x00
	flagZlib byte = 0x01
)

// ErrFrameTooLarge is returned when encoding or decoding a frame whose
// payload would exceed MaxFrameLen.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum length")

// ErrBadFlag is returned when a frame's flag byte is neither raw nor zlib.
var ErrBadFlag = errors.New("wire: unrecognized frame flag")

// compressThreshold is the payload size above which Encode opts to
// zlib-compress; below it the raw encoding is cheaper once framing
// overhead is accounted for.
const compressThreshold = 256

// Encode frames payload, compressing it with zlib when that's likely to
// help. The returned slice is length-prefixed and ready to write to the
// transport.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameLen {
		return nil, ErrFrameTooLarge
	}
	flag := flagRaw
	body := payload
	if len(payload) >= compressThreshold {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		if buf.Len() < len(payload) {
			flag = flagZlib
			body = buf.Bytes()
		}
	}
	if len(body) > MaxFrameLen {
		return nil, ErrFrameTooLarge
	}
	frame := make([]byte, 4+1+len(body))
	binary.BigEndian.PutUint32(frame[0:4], uint32(1+len(body)))
	frame[4] = flag
	copy(frame[5:], body)
	return frame, nil
}

// ReadFrame reads and decodes one frame from r, returning the decompressed
// payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 || uint64(n) > MaxFrameLen+1 {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return decodeBody(body[0], body[1:])
}

// Decode splits a complete in-memory frame (as produced by Encode, minus
// re-reading from a stream) into its payload. Useful for in-memory
// transports such as pkg/network.MemorySender.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < 5 {
		return nil, errors.New("wire: frame too short")
	}
	n := binary.BigEndian.Uint32(frame[0:4])
	if int(n)+4 != len(frame) {
		return nil, errors.New("wire: frame length mismatch")
	}
	return decodeBody(frame[4], frame[5:])
}

func decodeBody(flag byte, body []byte) ([]byte, error) {
	switch flag {
	case flagRaw:
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	case flagZlib:
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(io.LimitReader(zr, MaxFrameLen+1))
	default:
		return nil, ErrBadFlag
	}
}
