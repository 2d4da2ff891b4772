package bytecode

import (
	"strconv"

	"github.com/chazu/stackvm/pkg/textutil"
)

// Assemble translates program text into code using the registry to resolve
// mnemonics. Each non-blank line holds a mnemonic and at most one base-10
// integer argument separated by spaces. Lines without words are skipped so
// trailing newlines are harmless.
//
// The first bad line aborts assembly and no code is returned.
func Assemble(r *Registry, source string) (Code, error) {
	var code Code

	for i, line := range textutil.Lines(source) {
		words := textutil.Split(line, ' ')
		if len(words) == 0 {
			continue
		}

		// only support instruction and one argument
		if len(words) > 2 {
			return nil, &AssemblyError{Kind: ErrTooManyOperands, Line: i + 1, Text: line}
		}

		op, ok := r.Resolve(words[0])
		if !ok {
			return nil, &AssemblyError{Kind: ErrUnknownInstruction, Line: i + 1, Text: line, Mnemonic: words[0]}
		}

		var arg int64
		if len(words) == 2 {
			v, err := strconv.ParseInt(words[1], 10, 64)
			if err != nil {
				return nil, &AssemblyError{Kind: ErrInvalidOperand, Line: i + 1, Text: line, Err: err}
			}
			arg = v
		}

		code = append(code, Instruction{Op: op, Arg: arg})
	}

	return code, nil
}
