package bytecode

// Instruction is one assembled instruction. Instructions without a
// meaningful argument carry 0.
type Instruction struct {
	Op  OpcodeID `cbor:"op" json:"op"`
	Arg int64    `cbor:"arg" json:"arg"`
}

// Code is an assembled program. Addresses are 0-based indexes into it.
type Code []Instruction

// Len returns the number of instructions.
func (c Code) Len() int {
	return len(c)
}

// Equal reports whether both sequences hold identical instructions.
func (c Code) Equal(other Code) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}
