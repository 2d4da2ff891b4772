package bytecode

import (
	"fmt"
	"sort"
)

// OpcodeID identifies a registered instruction. Ids are assigned
// sequentially from zero in registration order.
type OpcodeID uint32

// Behavior is the executable part of an instruction. It receives the VM
// state and the instruction argument and reports whether execution should
// continue. Returning false halts the engine after this step.
type Behavior func(s *State, arg int64) (bool, error)

// registration is one append-only entry in the registry.
type registration struct {
	mnemonic string
	behavior Behavior
}

// Registry owns the mnemonic -> opcode id and opcode id -> (mnemonic,
// behavior) mappings of one VM. It is populated at VM construction and
// is read-only during assembly and execution.
type Registry struct {
	ids     map[string]OpcodeID
	entries []registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids: make(map[string]OpcodeID),
	}
}

// Register adds an instruction and returns its newly assigned id.
// A mnemonic that was registered before now resolves to the new id; the
// old id keeps its behavior and can still be executed.
// Panics if the mnemonic is empty or the behavior is nil.
func (r *Registry) Register(mnemonic string, behavior Behavior) OpcodeID {
	if mnemonic == "" {
		panic("bytecode: register with empty mnemonic")
	}
	if behavior == nil {
		panic(fmt.Sprintf("bytecode: register %s with nil behavior", mnemonic))
	}

	id := OpcodeID(len(r.entries))
	r.entries = append(r.entries, registration{mnemonic: mnemonic, behavior: behavior})
	r.ids[mnemonic] = id
	return id
}

// Resolve returns the id the mnemonic currently names.
func (r *Registry) Resolve(mnemonic string) (OpcodeID, bool) {
	id, ok := r.ids[mnemonic]
	return id, ok
}

// Describe returns the mnemonic an id was registered under.
func (r *Registry) Describe(id OpcodeID) (string, bool) {
	if int(id) >= len(r.entries) {
		return "", false
	}
	return r.entries[id].mnemonic, true
}

// Behavior returns the behavior registered for an id.
func (r *Registry) Behavior(id OpcodeID) (Behavior, bool) {
	if int(id) >= len(r.entries) {
		return nil, false
	}
	return r.entries[id].behavior, true
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Mnemonics returns the sorted mnemonics reachable through Resolve.
func (r *Registry) Mnemonics() []string {
	names := make([]string, 0, len(r.ids))
	for name := range r.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registrations returns every id ever registered under the mnemonic, oldest
// first. Only the last one is reachable through Resolve.
func (r *Registry) Registrations(mnemonic string) []OpcodeID {
	var ids []OpcodeID
	for i, e := range r.entries {
		if e.mnemonic == mnemonic {
			ids = append(ids, OpcodeID(i))
		}
	}
	return ids
}

// IsShadowed reports whether a later registration took over the id's
// mnemonic.
func (r *Registry) IsShadowed(id OpcodeID) bool {
	name, ok := r.Describe(id)
	if !ok {
		return false
	}
	return r.ids[name] != id
}
