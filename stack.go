package chip8

import "errors"

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

const StackSize = 16

// CallStack holds the return addresses of CALL.
// Sp is the number of addresses in use and always stays within [0, StackSize].
type CallStack struct {
	Data [StackSize]uint16
	Sp   byte
}

func (s CallStack) Empty() bool {
	return s.Sp == 0
}

func (s CallStack) Full() bool {
	return s.Sp >= StackSize
}

func (s *CallStack) Push(addr uint16) error {
	if s.Full() {
		return ErrStackOverflow
	}
	s.Data[s.Sp] = addr
	s.Sp++

	return nil
}

func (s *CallStack) Pop() (uint16, error) {
	if s.Empty() {
		return 0, ErrStackUnderflow
	}
	s.Sp--

	return s.Data[s.Sp], nil
}

// Peek returns the address that the next Pop would return
func (s CallStack) Peek() (uint16, bool) {
	if s.Empty() {
		return 0, false
	}

	return s.Data[s.Sp-1], true
}
