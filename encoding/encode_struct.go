package encoding

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
)

type structData struct {
	handler handler
	offset  uintptr
}

func encodeStruct(typ reflect.Type, bs int) (handler, structSize) {
	st := reflect2.Type2(typ).(reflect2.StructType)
	size := make(structSize, 0, st.NumField())
	fields := make([]*structData, 0, st.NumField())
	for field := range rangeField(st) {
		if field.Tag().Get("encoding") == "ignore" {
			continue
		}
		marshal, fieldSize := encodeFieldAlign(field.Type().Type1(), bs, size.Size())
		size = size.Add(fieldSize)
		fields = append(fields, &structData{marshal, field.Offset()})
	}
	size, pad := padStruct(size)
	return func(stream Stream, ptr unsafe.Pointer) error {
		for _, data := range fields {
			err := data.handler(stream, unsafe.Add(ptr, data.offset))
			if err != nil {
				return err
			}
		}
		if pad > 0 {
			return stream.Skip(pad)
		}
		return nil
	}, size
}

func encodeFieldAlign(typ reflect.Type, bs, offset int) (handler, structSize) {
	marshal, size := encode(typ, bs)
	if len(size) == 0 {
		return marshal, size
	}
	addr := align(offset, size[0])
	if addr == offset {
		return marshal, size
	}
	pad := addr - offset
	return func(stream Stream, ptr unsafe.Pointer) error {
		err := stream.Skip(pad)
		if err != nil {
			return err
		}
		return marshal(stream, ptr)
	}, append(structSize{pad}, size...)
}

func padStruct(size structSize) (structSize, int) {
	var maxSize int
	for _, s := range size {
		maxSize = max(maxSize, s)
	}
	totalSize := size.Size()
	pad := align(totalSize, maxSize) - totalSize
	if pad > 0 {
		size = append(size, pad)
	}
	return size, pad
}

func rangeField(typ reflect2.StructType) iter.Seq[reflect2.StructField] {
	return func(yield func(reflect2.StructField) bool) {
		count := typ.NumField()
		for i := 0; i < count; i++ {
			if !yield(typ.Field(i)) {
				break
			}
		}
	}
}
