package encoding

import (
	"encoding/binary"
	"io"
)

const (
	BlockSize    = 8
	MaxFrameSize = 64 << 20
)

func Marshal(val any) ([]byte, error) {
	buf := make(Buffer, EncodeSize(BlockSize, val))
	err := Encode(NewStream(&buf, BlockSize), val)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func Unmarshal(data []byte, val any) error {
	buf := Buffer(data)
	return Decode(NewStream(&buf, BlockSize), val)
}

// WriteFrame writes val as a length-prefixed frame.
func WriteFrame(w io.Writer, val any) error {
	data, err := Marshal(val)
	if err != nil {
		return err
	} else if len(data) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	frame := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)
	_, err = w.Write(frame)
	return err
}

func ReadFrame(r io.Reader, val any) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return ErrFrameTooLarge
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return err
	}
	return Unmarshal(data, val)
}
