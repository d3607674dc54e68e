package encoding

import (
	"reflect"
	"sync"
	"unsafe"
)

type handler = func(Stream, unsafe.Pointer) error

type handlerData struct {
	handler handler
	size    int
}

type processKey struct {
	bs  int
	typ reflect.Type
}

var (
	encodeProcess sync.Map
	padNull       [8]byte
)

func EncodeSize(blockSize int, val any) int {
	typ := reflect.TypeOf(val)
	if typ == nil {
		return blockSize
	} else if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return getMarshalData(typ, blockSize).size
}

func Encode(stream Stream, val any) error {
	bs := stream.BlockSize()
	v := reflect.ValueOf(val)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		_, err := stream.Write(padNull[:bs])
		return err
	} else if v.Kind() != reflect.Pointer {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		v = ptr
	}
	return getMarshalData(v.Type().Elem(), bs).handler(stream, v.UnsafePointer())
}

func getMarshalData(typ reflect.Type, bs int) *handlerData {
	key := processKey{bs, typ}
	if v, ok := encodeProcess.Load(key); ok {
		return v.(*handlerData)
	}
	marshal, size := encode(typ, bs)
	data := &handlerData{marshal, size.Size()}
	encodeProcess.Store(key, data)
	return data
}

func encode(typ reflect.Type, bs int) (handler, structSize) {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Complex64, reflect.Complex128:
		size := int(typ.Size())
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), size))
			return err
		}, structSize{size}
	case reflect.Float32:
		return func(stream Stream, ptr unsafe.Pointer) error {
			return stream.WriteFloat(*(*float32)(ptr))
		}, structSize{4}
	case reflect.Float64:
		return func(stream Stream, ptr unsafe.Pointer) error {
			return stream.WriteDouble(*(*float64)(ptr))
		}, structSize{8}
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		size := int(typ.Size())
		var pad int
		if size > bs {
			size = bs
		} else if size < bs {
			pad = bs - size
		}
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Write(unsafe.Slice((*byte)(ptr), size))
			if err != nil {
				return err
			} else if pad > 0 {
				_, err = stream.Write(padNull[:pad])
				return err
			}
			return nil
		}, structSize{bs}
	case reflect.Array:
		return encodeArray(typ, bs)
	case reflect.Pointer:
		return encodePointer(typ.Elem(), bs)
	case reflect.Slice:
		return encodeSlice(typ, bs)
	case reflect.String:
		return encodeString(bs)
	case reflect.Struct:
		return encodeStruct(typ, bs)
	}
	panic("encoding: unsupported type " + typ.String())
}

func encodePointer(typ reflect.Type, bs int) (handler, structSize) {
	marshal, elemSize := encode(typ, bs)
	totalSize := elemSize.Size()
	return func(stream Stream, ptr unsafe.Pointer) error {
		elem := *(*unsafe.Pointer)(ptr)
		if elem == nil {
			_, err := stream.Write(padNull[:bs])
			return err
		}
		subStream, err := stream.WriteStream(totalSize)
		if err != nil {
			return err
		}
		return marshal(subStream, elem)
	}, structSize{bs}
}
