package encoding

import (
	"encoding/binary"
	"io"
	"math"
)

type Buffer []byte

func (buf *Buffer) ReadAt(b []byte, off int64) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	} else if int(off) >= len(*buf) {
		return 0, io.EOF
	}
	n = copy(b, (*buf)[off:])
	if n < len(b) {
		err = io.ErrUnexpectedEOF
	}
	return
}

func (buf *Buffer) WriteAt(b []byte, off int64) (n int, err error) {
	if end := len(b) + int(off); end > len(*buf) {
		*buf = append(*buf, make([]byte, end-len(*buf))...)
	}
	return copy((*buf)[off:], b), nil
}

type bufferStream struct {
	buf  *Buffer
	off  int
	size int
}

// NewStream returns a stream positioned at the start of buf. Nested values
// are allocated at the end of buf and referenced by offset; offset 0 is nil.
func NewStream(buf *Buffer, blockSize int) Stream {
	return &bufferStream{buf, 0, blockSize}
}

func (bs *bufferStream) BlockSize() int {
	return bs.size
}

func (bs *bufferStream) Offset() uint64 {
	return uint64(bs.off)
}

func (bs *bufferStream) Skip(n int) error {
	bs.off += n
	return nil
}

func (bs *bufferStream) Read(b []byte) (int, error) {
	n, err := bs.buf.ReadAt(b, int64(bs.off))
	if err == nil {
		bs.Skip(n)
	}
	return n, err
}

func (bs *bufferStream) ReadFloat() (float32, error) {
	var raw [4]byte
	_, err := bs.Read(raw[:])
	return math.Float32frombits(binary.LittleEndian.Uint32(raw[:])), err
}

func (bs *bufferStream) ReadDouble() (float64, error) {
	var raw [8]byte
	_, err := bs.Read(raw[:])
	return math.Float64frombits(binary.LittleEndian.Uint64(raw[:])), err
}

func (bs *bufferStream) ReadString() (string, error) {
	n, err := readBlock(bs)
	if err != nil {
		return "", err
	} else if n > uint64(len(*bs.buf)-bs.off) {
		return "", ErrCorrupt
	}
	b := make([]byte, n)
	_, err = bs.Read(b)
	return string(b), err
}

func (bs *bufferStream) ReadStream() (Stream, error) {
	off, err := readBlock(bs)
	if err != nil {
		return nil, err
	} else if off != 0 && off >= uint64(len(*bs.buf)) {
		return nil, ErrCorrupt
	}
	return &bufferStream{bs.buf, int(off), bs.size}, nil
}

func (bs *bufferStream) Write(b []byte) (int, error) {
	n, err := bs.buf.WriteAt(b, int64(bs.off))
	if err == nil {
		bs.Skip(n)
	}
	return n, err
}

func (bs *bufferStream) WriteFloat(f float32) error {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], math.Float32bits(f))
	_, err := bs.Write(raw[:])
	return err
}

func (bs *bufferStream) WriteDouble(d float64) error {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], math.Float64bits(d))
	_, err := bs.Write(raw[:])
	return err
}

func (bs *bufferStream) WriteString(str string) error {
	err := writeBlock(bs, uint64(len(str)))
	if err != nil {
		return err
	}
	_, err = bs.Write([]byte(str))
	return err
}

func (bs *bufferStream) WriteStream(size int) (Stream, error) {
	off := len(*bs.buf)
	*bs.buf = append(*bs.buf, make([]byte, size)...)
	err := writeBlock(bs, uint64(off))
	if err != nil {
		return nil, err
	}
	return &bufferStream{bs.buf, off, bs.size}, nil
}
