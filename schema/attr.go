package schema

import "fmt"

// Attr identifies a column of a segment.
type Attr struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

func NewAttr(name string, typ FieldType) Attr {
	return Attr{Name: name, Type: typ}
}

func (a Attr) Equal(other Attr) bool {
	return a.Name == other.Name && a.Type == other.Type
}

func (a Attr) String() string {
	return fmt.Sprintf("%s:%s", a.Name, a.Type.String())
}
