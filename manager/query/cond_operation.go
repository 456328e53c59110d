package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

type CondOperand byte

const (
	EQ CondOperand = iota
	GT
	LT
	RANGE

	NE
	GE
	LE
	IN
	NOT_IN
	LIKE
	NOT_LIKE
	IS_NULL
	NOT_NULL
)

func (c CondOperand) String() string {
	switch c {
	case EQ:
		return "EQ"
	case GT:
		return "GT"
	case LT:
		return "LT"
	case RANGE:
		return "RANGE"
	case NE:
		return "NE"
	case GE:
		return "GE"
	case LE:
		return "LE"
	case IN:
		return "IN"
	case NOT_IN:
		return "NOT_IN"
	case LIKE:
		return "LIKE"
	case NOT_LIKE:
		return "NOT_LIKE"
	case IS_NULL:
		return "IS_NULL"
	case NOT_NULL:
		return "NOT_NULL"
	default:
		panic(fmt.Sprintf("unknown operand %v", byte(c)))
	}
}

func (c CondOperand) valid() bool {
	return c <= NOT_NULL
}

// arity is the number of arguments the operand takes, -1 for one or more.
func (c CondOperand) arity() int {
	switch c {
	case RANGE:
		return 2
	case IN, NOT_IN:
		return -1
	case IS_NULL, NOT_NULL:
		return 0
	default:
		return 1
	}
}

func ParseCondOperand(name string) (CondOperand, error) {
	for c := EQ; c <= NOT_NULL; c++ {
		if strings.EqualFold(c.String(), name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown operand '%s'", name)
}

func (c CondOperand) MarshalJSON() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("unknown operand %d", byte(c))
	}
	return json.Marshal(c.String())
}

func (c *CondOperand) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("operand must be a string: %w", err)
	}

	parsed, err := ParseCondOperand(name)
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}
