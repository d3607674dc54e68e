package encoding

import (
	"reflect"
	"unsafe"
)

const maxSliceLen = 1 << 24

func decodeArray(typ reflect.Type, bs int) (handler, structSize) {
	count := typ.Len()
	unmarshal, elemSize := decode(typ.Elem(), bs)
	size := make(structSize, 0, count*len(elemSize))
	for i := 0; i < count; i++ {
		size = size.Add(elemSize)
	}
	stride := typ.Elem().Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := 0; i < count; i++ {
			err := unmarshal(stream, ptr)
			if err != nil {
				return err
			}
			ptr = unsafe.Add(ptr, stride)
		}
		return nil
	}, size
}

func decodeSlice(typ reflect.Type, bs int) (handler, structSize) {
	unmarshal, _ := decode(typ.Elem(), bs)
	return func(stream Stream, ptr unsafe.Pointer) error {
		slice := reflect.NewAt(typ, ptr).Elem()
		subStream, err := stream.ReadStream()
		if err != nil {
			return err
		} else if subStream.Offset() == 0 {
			slice.Set(reflect.Zero(typ))
			return nil
		}
		n, err := readBlock(subStream)
		if err != nil {
			return err
		} else if n > maxSliceLen {
			return ErrCorrupt
		}
		elems := reflect.MakeSlice(typ, int(n), int(n))
		for i := 0; i < int(n); i++ {
			err = unmarshal(subStream, elems.Index(i).Addr().UnsafePointer())
			if err != nil {
				return err
			}
		}
		slice.Set(elems)
		return nil
	}, structSize{bs}
}

func decodeString(bs int) (handler, structSize) {
	return func(stream Stream, ptr unsafe.Pointer) error {
		subStream, err := stream.ReadStream()
		if err != nil {
			return err
		} else if subStream.Offset() == 0 {
			*(*string)(ptr) = ""
			return nil
		}
		str, err := subStream.ReadString()
		if err != nil {
			return err
		}
		*(*string)(ptr) = str
		return nil
	}, structSize{bs}
}
