package rc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dot5enko/segment-rc/schema"
)

var (
	ErrUnknownType = errors.New("unknown operator type")
	ErrMalformed   = errors.New("malformed operator")
)

// wireNode is the serialized form of an operator:
//
//	{"type": "and", "children": [...]}
//	{"type": "between", "attr": {"name": "a", "type": "int64"}, "value": [10, 20]}
type wireNode struct {
	Type     string          `json:"type"`
	Children []*wireNode     `json:"children,omitempty"`
	Attr     *schema.Attr    `json:"attr,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// Marshal encodes an operator tree.
func Marshal(op Operator) ([]byte, error) {
	node, err := toWire(op)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// Unmarshal decodes an operator tree, running every construction check.
func Unmarshal(data []byte) (Operator, error) {

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var node wireNode
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
	}

	return fromWire(&node)
}

// Filter wraps an operator so it can be embedded in other JSON documents.
type Filter struct {
	Operator
}

func (f Filter) MarshalJSON() ([]byte, error) {
	if f.Operator == nil {
		return []byte("null"), nil
	}
	return Marshal(f.Operator)
}

func (f *Filter) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Operator = nil
		return nil
	}
	op, err := Unmarshal(data)
	if err != nil {
		return err
	}
	f.Operator = op
	return nil
}

func toWire(op Operator) (*wireNode, error) {

	node := &wireNode{Type: op.Type()}

	var value any

	switch it := op.(type) {
	case *And, *Or, *Not:
		for _, child := range op.Children() {
			childNode, err := toWire(child)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)
		}
		return node, nil

	case *Equal:
		value = it.Value()
	case *NotEqual:
		value = it.Value()
	case *Greater:
		value = it.Value()
	case *GreaterEqual:
		value = it.Value()
	case *Less:
		value = it.Value()
	case *LessEqual:
		value = it.Value()
	case *Between:
		value = []any{it.Low(), it.High()}
	case *In:
		value = it.Values()
	case *NotIn:
		value = it.Values()
	case *Like:
		value = it.Pattern()
	case *NotLike:
		value = it.Pattern()
	case *IsNull, *NotNull:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, op)
	}

	attr := op.(Leaf).Attr()
	node.Attr = &attr

	if value != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("operator %s: %w", op.Type(), err)
		}
		node.Value = raw
	}

	return node, nil
}

// built drops the typed nil a failed constructor returns.
func built[T Operator](op T, err error) (Operator, error) {
	if err != nil {
		return nil, err
	}
	return op, nil
}

func decodeValue(raw json.RawMessage, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}

func fromWire(node *wireNode) (Operator, error) {

	if node == nil {
		return nil, fmt.Errorf("%w: null node", ErrMalformed)
	}

	switch node.Type {
	case TypeAnd, TypeOr, TypeNot:
		return combinatorFromWire(node)
	}

	if len(node.Children) > 0 {
		return nil, fmt.Errorf("%w: %s takes no children", ErrMalformed, node.Type)
	}
	if node.Attr == nil {
		return nil, fmt.Errorf("%w: %s requires attr", ErrMalformed, node.Type)
	}

	attr := *node.Attr

	switch node.Type {
	case TypeIsNull:
		return built(NewIsNull(attr))
	case TypeNotNull:
		return built(NewNotNull(attr))
	}

	if len(node.Value) == 0 {
		return nil, fmt.Errorf("%w: %s requires value", ErrMalformed, node.Type)
	}

	switch node.Type {
	case TypeBetween:
		var bounds []any
		if err := decodeValue(node.Value, &bounds); err != nil || len(bounds) != 2 {
			return nil, fmt.Errorf("%w: between value must be [low, high]", ErrMalformed)
		}
		return built(NewBetween(attr, bounds[0], bounds[1]))

	case TypeIn, TypeNotIn:
		var values []any
		if err := decodeValue(node.Value, &values); err != nil {
			return nil, fmt.Errorf("%w: %s value must be an array", ErrMalformed, node.Type)
		}
		if node.Type == TypeIn {
			return built(NewIn(attr, values...))
		}
		return built(NewNotIn(attr, values...))
	}

	var value any
	if err := decodeValue(node.Value, &value); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err.Error())
	}

	switch node.Type {
	case TypeEqual:
		return built(NewEqual(attr, value))
	case TypeNotEqual:
		return built(NewNotEqual(attr, value))
	case TypeGreater:
		return built(NewGreater(attr, value))
	case TypeGreaterEqual:
		return built(NewGreaterEqual(attr, value))
	case TypeLess:
		return built(NewLess(attr, value))
	case TypeLessEqual:
		return built(NewLessEqual(attr, value))
	case TypeLike:
		return built(NewLike(attr, value))
	case TypeNotLike:
		return built(NewNotLike(attr, value))
	}

	return nil, fmt.Errorf("%w: `%s`", ErrUnknownType, node.Type)
}

func combinatorFromWire(node *wireNode) (Operator, error) {

	if node.Attr != nil || len(node.Value) > 0 {
		return nil, fmt.Errorf("%w: %s takes children only", ErrMalformed, node.Type)
	}

	children := make([]Operator, 0, len(node.Children))
	for _, it := range node.Children {
		child, err := fromWire(it)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	switch node.Type {
	case TypeAnd:
		return built(NewAnd(children...))
	case TypeOr:
		return built(NewOr(children...))
	default:
		if len(children) != 1 {
			return nil, fmt.Errorf("%w: not takes exactly one child, got %d", ErrMalformed, len(children))
		}
		return built(NewNot(children[0]))
	}
}
