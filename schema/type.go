package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

type FieldType uint8

const (
	Int8FieldType FieldType = iota
	Int16FieldType
	Int32FieldType
	Int64FieldType

	Float64FieldType
	Float32FieldType

	Uint64FieldType
	Uint8FieldType
	Uint32FieldType
	Uint16FieldType

	StringFieldType
)

func (f FieldType) String() string {
	switch f {
	case Int8FieldType:
		return "Int8"
	case Int16FieldType:
		return "Int16"
	case Int32FieldType:
		return "Int32"
	case Int64FieldType:
		return "Int64"
	case Float64FieldType:
		return "Float64"
	case Float32FieldType:
		return "Float32"
	case Uint64FieldType:
		return "Uint64"
	case Uint8FieldType:
		return "Uint8"
	case Uint32FieldType:
		return "Uint32"
	case Uint16FieldType:
		return "Uint16"
	case StringFieldType:
		return "String"
	default:
		return ""

	}
}

// Size is the width of one stored value in bytes, 0 for variable sized types.
func (f FieldType) Size() int {
	switch f {

	case Int8FieldType, Uint8FieldType:
		return 1
	case Int16FieldType, Uint16FieldType:
		return 2
	case Int32FieldType, Float32FieldType, Uint32FieldType:
		return 4
	case Int64FieldType, Float64FieldType, Uint64FieldType:
		return 8
	case StringFieldType:
		return 0

	default:
		panic("unknown field type " + f.String())
	}
}

func (f FieldType) Valid() bool {
	return f <= StringFieldType
}

func (f FieldType) IsInteger() bool {
	switch f {
	case Int8FieldType, Int16FieldType, Int32FieldType, Int64FieldType,
		Uint8FieldType, Uint16FieldType, Uint32FieldType, Uint64FieldType:
		return true
	default:
		return false
	}
}

func (f FieldType) IsFloat() bool {
	return f == Float32FieldType || f == Float64FieldType
}

func (f FieldType) IsNumeric() bool {
	return f.IsInteger() || f.IsFloat()
}

func (f FieldType) IsString() bool {
	return f == StringFieldType
}

func ParseFieldType(name string) (FieldType, error) {
	for f := Int8FieldType; f <= StringFieldType; f++ {
		if strings.EqualFold(f.String(), name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field type '%s'", name)
}

func (f FieldType) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("unknown field type %d", uint8(f))
	}
	return json.Marshal(strings.ToLower(f.String()))
}

func (f *FieldType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("field type must be a string: %w", err)
	}

	parsed, err := ParseFieldType(name)
	if err != nil {
		return err
	}

	*f = parsed
	return nil
}
