package common

import (
	"fmt"
	"math"
)

type RouterID int32
type LinkID int32
type Cost int32

// Infinity is the cost of a destination with no known path.
const Infinity Cost = math.MaxInt32

func (r RouterID) String() string {
	return fmt.Sprintf("R%d", int32(r))
}

func (l LinkID) String() string {
	return fmt.Sprintf("%d", int32(l))
}

func (c Cost) String() string {
	if c == Infinity {
		return "inf"
	}

	return fmt.Sprintf("%d", int32(c))
}
