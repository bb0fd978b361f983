package scan

import (
	"fmt"
	"io"
)

// PortRange is an inclusive range of TCP ports.
type PortRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r PortRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r PortRange) Contains(port int) bool {
	return port >= r.Start && port <= r.End
}

func (r PortRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

func (r PortRange) Iterator() *PortIterator {
	return NewPortIterator(r)
}

// PortIterator walks a PortRange in ascending order and returns io.EOF once
// the range is exhausted.
type PortIterator struct {
	r    PortRange
	next int
}

func NewPortIterator(r PortRange) *PortIterator {
	return &PortIterator{
		r:    r,
		next: r.Start,
	}
}

func (pi *PortIterator) Peek() (int, error) {
	if pi.next > pi.r.End {
		return 0, io.EOF
	}
	return pi.next, nil
}

func (pi *PortIterator) Next() (int, error) {
	port, err := pi.Peek()
	if err != nil {
		return 0, err
	}
	pi.next++
	return port, nil
}
