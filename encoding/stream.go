package encoding

import "encoding/binary"

type Stream interface {
	BlockSize() int
	Offset() uint64
	Skip(int) error
	Read([]byte) (int, error)
	ReadFloat() (float32, error)
	ReadDouble() (float64, error)
	ReadString() (string, error)
	ReadStream() (Stream, error)
	Write([]byte) (int, error)
	WriteFloat(float32) error
	WriteDouble(float64) error
	WriteString(string) error
	WriteStream(int) (Stream, error)
}

func readBlock(stream Stream) (uint64, error) {
	var raw [8]byte
	_, err := stream.Read(raw[:stream.BlockSize()])
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw[:]), nil
}

func writeBlock(stream Stream, v uint64) error {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	_, err := stream.Write(raw[:stream.BlockSize()])
	return err
}
