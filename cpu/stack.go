package cpu

// Stack is the program stack, growing down through memory from %rsp.
type Stack struct {
	Register *Registers
	Memory   *Memory
}

// Push a value. The stack pointer must leave room for a quad below it,
// and the target must be in memory; otherwise nothing is changed.
func (s Stack) Push(value int64) (ok bool) {
	rsp := s.Register.Get(REG_RSP)
	if s.Full() {
		return
	}

	addr := uint64(rsp - QUAD_SIZE)
	if !s.Memory.PutQuad(addr, value) {
		return
	}

	s.Register.Set(REG_RSP, rsp-QUAD_SIZE)
	return true
}

// Pop a value, advancing the stack pointer.
func (s Stack) Pop() (value int64, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Register.Set(REG_RSP, s.Register.Get(REG_RSP)+QUAD_SIZE)
	}
	return
}

// Peek at the value on the top of the stack.
func (s Stack) Peek() (value int64, ok bool) {
	rsp := s.Register.Get(REG_RSP)
	if rsp < 0 {
		return
	}

	return s.Memory.GetQuad(uint64(rsp))
}

// Full returns true when no quad can be pushed below the stack pointer.
func (s Stack) Full() bool {
	return s.Register.Get(REG_RSP) < QUAD_SIZE
}
