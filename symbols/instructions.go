package symbols

import (
	"fmt"

	"github.com/crytic/medusa-geth/core/vm"
	"github.com/crytic/soltrace/compilation/types"
	"github.com/holiman/uint256"
)

// JumpType classifies a jump instruction for call stack reconstruction.
type JumpType string

const (
	// JumpTypeNone marks an instruction that does not jump.
	JumpTypeNone JumpType = "NONE"
	// JumpTypeInto marks a jump into a function.
	JumpTypeInto JumpType = "INTO"
	// JumpTypeOutOf marks a jump returning from a function.
	JumpTypeOutOf JumpType = "OUT_OF"
	// JumpTypeRegular marks a jump within a function, such as a loop or branch.
	JumpTypeRegular JumpType = "REGULAR"
)

// jumpTypeFor classifies an instruction. Only JUMP and JUMPI jump; their classification comes from the source map
// element, where anything other than a call or return is a regular jump.
func jumpTypeFor(opcode vm.OpCode, element *types.SourceMapElement) JumpType {
	if opcode != vm.JUMP && opcode != vm.JUMPI {
		return JumpTypeNone
	}
	if element == nil {
		return JumpTypeRegular
	}
	switch element.JumpType {
	case types.SourceMapJumpTypeJumpIn:
		return JumpTypeInto
	case types.SourceMapJumpTypeJumpOut:
		return JumpTypeOutOf
	default:
		return JumpTypeRegular
	}
}

// Instruction is a single decoded opcode of a bytecode buffer.
type Instruction struct {
	// PC is the byte offset of the opcode.
	PC int

	// OpCode is the decoded opcode.
	OpCode vm.OpCode

	// PushData holds the immediate operand of a push opcode. It is nil for other opcodes and for PUSH0.
	PushData []byte

	// Location is the source range the instruction maps to, or nil if the source map gives none.
	Location *SourceLocation

	// JumpType classifies JUMP and JUMPI instructions.
	JumpType JumpType

	// ModifierDepth is the modifier nesting depth reported by the source map.
	ModifierDepth int
}

// pushDataLength returns the number of immediate bytes that follow an opcode.
func pushDataLength(opcode vm.OpCode) int {
	if !opcode.IsPush() || opcode == vm.PUSH0 {
		return 0
	}
	return int(opcode) - int(vm.PUSH1) + 1
}

// Length returns the byte length of the instruction including its immediate operand.
func (i *Instruction) Length() int {
	return 1 + len(i.PushData)
}

// IsPush indicates whether the instruction is a push opcode, including PUSH0.
func (i *Instruction) IsPush() bool {
	return i.OpCode.IsPush()
}

// PushValue returns the immediate operand of a push instruction as a 256-bit integer, or nil if the instruction does
// not push. PUSH0 yields zero.
func (i *Instruction) PushValue() *uint256.Int {
	if !i.IsPush() {
		return nil
	}
	return new(uint256.Int).SetBytes(i.PushData)
}

// String returns the instruction as `pc: OPCODE [0xdata]`.
func (i *Instruction) String() string {
	if len(i.PushData) > 0 {
		return fmt.Sprintf("%d: %s 0x%x", i.PC, i.OpCode, i.PushData)
	}
	return fmt.Sprintf("%d: %s", i.PC, i.OpCode)
}

// decodeInstructions scans code left to right, consuming one source map element per instruction. A push whose
// operand would run past the end of the code marks the start of trailing data and stops decoding.
// Returns the instructions and the byte offset decoding stopped at.
func decodeInstructions(code []byte, sourceMap types.SourceMap, files map[int]*SourceFile) ([]*Instruction, int) {
	instructions := make([]*Instruction, 0, len(sourceMap))
	pc := 0
	for pc < len(code) {
		opcode := vm.OpCode(code[pc])
		length := 1 + pushDataLength(opcode)
		if pc+length > len(code) {
			break
		}

		instruction := &Instruction{
			PC:     pc,
			OpCode: opcode,
		}
		if length > 1 {
			instruction.PushData = code[pc+1 : pc+length]
		}

		var element *types.SourceMapElement
		if index := len(instructions); index < len(sourceMap) {
			element = &sourceMap[index]
			instruction.ModifierDepth = element.ModifierDepth
			if element.HasSource() {
				// Sources missing from the model leave the instruction without a location
				if file, ok := files[element.FileID]; ok {
					instruction.Location = NewSourceLocation(file, element.Offset, element.Length)
				}
			}
		}
		instruction.JumpType = jumpTypeFor(opcode, element)

		instructions = append(instructions, instruction)
		pc += length
	}
	return instructions, pc
}
