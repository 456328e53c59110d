package schema

import "fmt"

// RSValue is the outcome of a rough check against statistics.
type RSValue byte

const (
	// None: provably no row matches.
	None RSValue = iota
	// Some: statistics are inconclusive, an exact check is required.
	Some
	// All: provably every row matches.
	All
)

func (v RSValue) String() string {
	switch v {
	case None:
		return "None"
	case Some:
		return "Some"
	case All:
		return "All"
	default:
		panic(fmt.Sprintf("unknown rs value %d", byte(v)))
	}
}

// And is the meet of the lattice, used to combine the children of a conjunction.
func (v RSValue) And(other RSValue) RSValue {
	if v == None || other == None {
		return None
	}
	if v == Some || other == Some {
		return Some
	}
	return All
}

// Or is the join of the lattice, used to combine the children of a disjunction.
func (v RSValue) Or(other RSValue) RSValue {
	if v == All || other == All {
		return All
	}
	if v == Some || other == Some {
		return Some
	}
	return None
}
