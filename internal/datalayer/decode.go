package datalayer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// ErrMalformed is returned when a snapshot is not valid JSON.
var ErrMalformed = errors.New("malformed dataLayer snapshot")

// Decode parses a JSON snapshot of the event queue into a Value, keeping
// object keys in the order they were serialized. Empty input decodes to null.
func Decode(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Null(), nil
	}

	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)
	v := readValue(iter)
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return Null(), fmt.Errorf("%w: %v", ErrMalformed, iter.Error)
	}
	// Only whitespace may follow the value.
	if next := iter.WhatIsNext(); next != jsoniter.InvalidValue || !errors.Is(iter.Error, io.EOF) {
		return Null(), fmt.Errorf("%w: unexpected data after value", ErrMalformed)
	}
	return v, nil
}

// MustDecode is Decode for literals in tests and fixtures.
func MustDecode(s string) Value {
	v, err := Decode([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func readValue(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return Null()
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.NumberValue:
		return Number(string(iter.ReadNumber()))
	case jsoniter.StringValue:
		return String(iter.ReadString())
	case jsoniter.ArrayValue:
		var fields []Field
		for iter.ReadArray() {
			fields = append(fields, Field{Key: strconv.Itoa(len(fields)), Value: readValue(iter)})
		}
		return Value{kind: KindArray, fields: fields}
	case jsoniter.ObjectValue:
		var fields []Field
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			fields = append(fields, Field{Key: key, Value: readValue(it)})
			return it.Error == nil
		})
		return Object(fields...)
	default:
		iter.ReportError("readValue", "unexpected token")
		return Null()
	}
}
