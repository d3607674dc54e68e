package encoding

import (
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
)

func decodeStruct(typ reflect.Type, bs int) (handler, structSize) {
	st := reflect2.Type2(typ).(reflect2.StructType)
	size := make(structSize, 0, st.NumField())
	fields := make([]*structData, 0, st.NumField())
	for field := range rangeField(st) {
		if field.Tag().Get("encoding") == "ignore" {
			continue
		}
		unmarshal, fieldSize := decodeFieldAlign(field.Type().Type1(), bs, size.Size())
		size = size.Add(fieldSize)
		fields = append(fields, &structData{unmarshal, field.Offset()})
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

func decodeFieldAlign(typ reflect.Type, bs, offset int) (handler, structSize) {
	unmarshal, size := decode(typ, bs)
	if len(size) == 0 {
		return unmarshal, size
	}
	addr := align(offset, size[0])
	if addr == offset {
		return unmarshal, size
	}
	pad := addr - offset
	return func(stream Stream, ptr unsafe.Pointer) error {
		err := stream.Skip(pad)
		if err != nil {
			return err
		}
		return unmarshal(stream, ptr)
	}, append(structSize{pad}, size...)
}
