package encoding

import (
	"reflect"
	"unsafe"
)

func encodeArray(typ reflect.Type, bs int) (handler, structSize) {
	count := typ.Len()
	marshal, elemSize := encode(typ.Elem(), bs)
	size := make(structSize, 0, count*len(elemSize))
	for i := 0; i < count; i++ {
		size = size.Add(elemSize)
	}
	stride := typ.Elem().Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := 0; i < count; i++ {
			err := marshal(stream, ptr)
			if err != nil {
				return err
			}
			ptr = unsafe.Add(ptr, stride)
		}
		return nil
	}, size
}

func encodeSlice(typ reflect.Type, bs int) (handler, structSize) {
	marshal, elemSize := encode(typ.Elem(), bs)
	elemTotalSize := elemSize.Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		slice := reflect.NewAt(typ, ptr).Elem()
		if slice.IsNil() {
			_, err := stream.Write(padNull[:bs])
			return err
		}
		n := slice.Len()
		subStream, err := stream.WriteStream(bs + elemTotalSize*n)
		if err != nil {
			return err
		} else if err = writeBlock(subStream, uint64(n)); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			err = marshal(subStream, slice.Index(i).Addr().UnsafePointer())
			if err != nil {
				return err
			}
		}
		return nil
	}, structSize{bs}
}

func encodeString(bs int) (handler, structSize) {
	return func(stream Stream, ptr unsafe.Pointer) error {
		str := *(*string)(ptr)
		if len(str) == 0 {
			_, err := stream.Write(padNull[:bs])
			return err
		}
		subStream, err := stream.WriteStream(bs + len(str))
		if err != nil {
			return err
		}
		return subStream.WriteString(str)
	}, structSize{bs}
}
