package registry

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/veldt-engine/veldt/codec"
)

// Codec is the trait that round-trips values of the registered type through
// raw bytes. It is installed on every registration.
type Codec struct {
	Marshal   func(value any) ([]byte, error)
	Unmarshal func(bz []byte) (any, error)
}

// NewCodec builds the Codec trait for T.
func NewCodec[T any]() Codec {
	return Codec{
		Marshal: func(value any) ([]byte, error) {
			return codec.Encode(value)
		},
		Unmarshal: func(bz []byte) (any, error) {
			return codec.Decode[T](bz)
		},
	}
}

// Constructor is the trait that produces a fresh value of the registered type.
type Constructor struct {
	New func() any
}

// NewConstructor builds the Constructor trait for T using T's zero value.
func NewConstructor[T any]() Constructor {
	return Constructor{
		New: func() any {
			var t T
			return t
		},
	}
}

// SerializationData records the struct fields of a registered type that are
// excluded from serialization, along with a default-value producer per field
// used to backfill the field on decode.
type SerializationData struct {
	// skipped maps a field's JSON key to its struct field name and default producer.
	skipped map[string]skippedField
}

type skippedField struct {
	fieldName  string
	newDefault func() any
}

// NewSerializationData builds the SerializationData trait for the given struct
// type. Every named field must exist on the struct.
func NewSerializationData(typ reflect.Type, fields []string) (SerializationData, error) {
	data := SerializationData{skipped: make(map[string]skippedField, len(fields))}
	for _, name := range fields {
		field, ok := typ.FieldByName(name)
		if !ok {
			return SerializationData{}, eris.Errorf("cannot skip field %q: no such field on %s", name, typ.String())
		}
		fieldType := field.Type
		data.skipped[jsonKeyForField(field)] = skippedField{
			fieldName: name,
			newDefault: func() any {
				return reflect.Zero(fieldType).Interface()
			},
		}
	}
	return data, nil
}

// IsSkipped reports whether the struct field with the given name is excluded
// from serialization.
func (s SerializationData) IsSkipped(fieldName string) bool {
	for _, field := range s.skipped {
		if field.fieldName == fieldName {
			return true
		}
	}
	return false
}

// SkippedKeys returns the JSON keys of all skipped fields in sorted order.
func (s SerializationData) SkippedKeys() []string {
	keys := make([]string, 0, len(s.skipped))
	for key := range s.skipped {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ApplyDefaults sets every skipped field on the given struct pointer to its
// registered default value.
func (s SerializationData) ApplyDefaults(value any) error {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return eris.New("defaults can only be applied to a pointer to a struct")
	}
	elem := v.Elem()
	for _, field := range s.skipped {
		target := elem.FieldByName(field.fieldName)
		if !target.IsValid() {
			return eris.Errorf("no such field %q on %s", field.fieldName, elem.Type().String())
		}
		if !target.CanSet() {
			return eris.Errorf("cannot set field %q on %s", field.fieldName, elem.Type().String())
		}
		target.Set(reflect.ValueOf(field.newDefault()))
	}
	return nil
}

// Strip removes the skipped fields from the given JSON encoding of the type.
func (s SerializationData) Strip(bz []byte) ([]byte, error) {
	if len(s.skipped) == 0 {
		return bz, nil
	}
	fields, err := codec.Decode[map[string]any](bz)
	if err != nil {
		return nil, err
	}
	for key := range s.skipped {
		delete(fields, key)
	}
	return codec.Encode(fields)
}

func jsonKeyForField(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("json")
	if !ok || tag == "" {
		return field.Name
	}
	for i := range tag {
		if tag[i] == ',' {
			tag = tag[:i]
			break
		}
	}
	if tag == "" {
		return field.Name
	}
	return tag
}
