package query

import (
	"errors"
	"fmt"

	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
)

var (
	ErrArgumentCount = errors.New("wrong number of filter arguments")
)

// FilterCondition is one flat comparison of a legacy filter list, all
// conditions of a query are combined with AND.
type FilterCondition struct {
	Field     string      `json:"field"`
	Operand   CondOperand `json:"op"`
	Arguments []any       `json:"args,omitempty"`
}

func (fc FilterCondition) checkArguments() error {

	expected := fc.Operand.arity()

	if expected < 0 {
		if len(fc.Arguments) == 0 {
			return fmt.Errorf("%w: %s on `%s` takes at least one", ErrArgumentCount, fc.Operand.String(), fc.Field)
		}
		return nil
	}

	if len(fc.Arguments) != expected {
		return fmt.Errorf("%w: %s on `%s` takes %d, got %d", ErrArgumentCount, fc.Operand.String(), fc.Field, expected, len(fc.Arguments))
	}

	return nil
}

// Operator converts the condition into an operator over attr.
func (fc FilterCondition) Operator(attr schema.Attr) (rc.Operator, error) {

	if !fc.Operand.valid() {
		return nil, fmt.Errorf("unknown operand %d on `%s`", byte(fc.Operand), fc.Field)
	}

	if err := fc.checkArguments(); err != nil {
		return nil, err
	}

	var op rc.Operator
	var err error

	switch fc.Operand {
	case EQ:
		op, err = built(rc.NewEqual(attr, fc.Arguments[0]))
	case NE:
		op, err = built(rc.NewNotEqual(attr, fc.Arguments[0]))
	case GT:
		op, err = built(rc.NewGreater(attr, fc.Arguments[0]))
	case GE:
		op, err = built(rc.NewGreaterEqual(attr, fc.Arguments[0]))
	case LT:
		op, err = built(rc.NewLess(attr, fc.Arguments[0]))
	case LE:
		op, err = built(rc.NewLessEqual(attr, fc.Arguments[0]))
	case RANGE:
		op, err = built(rc.NewBetween(attr, fc.Arguments[0], fc.Arguments[1]))
	case IN:
		op, err = built(rc.NewIn(attr, fc.Arguments...))
	case NOT_IN:
		op, err = built(rc.NewNotIn(attr, fc.Arguments...))
	case LIKE:
		op, err = built(rc.NewLike(attr, fc.Arguments[0]))
	case NOT_LIKE:
		op, err = built(rc.NewNotLike(attr, fc.Arguments[0]))
	case IS_NULL:
		op, err = built(rc.NewIsNull(attr))
	case NOT_NULL:
		op, err = built(rc.NewNotNull(attr))
	}

	if err != nil {
		return nil, fmt.Errorf("condition %s on `%s`: %w", fc.Operand.String(), fc.Field, err)
	}

	return op, nil
}

// built keeps a failed constructor from producing a typed nil operator.
func built[T rc.Operator](op T, err error) (rc.Operator, error) {
	if err != nil {
		return nil, err
	}
	return op, nil
}
