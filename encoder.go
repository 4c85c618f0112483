// encoder.go - a reverse-of-the-decoder subset, used for round-trip
// property testing.
//
// Grounded on original_source/src/cpu/encoder.rs: encode the common
// register/immediate forms the decoder also accepts, enough to assert
// Decode(Encode(i)) reproduces i for the instruction shapes this module
// actually emits (spec.md §8's round-trip property), not a full inverse
// of every decodable form.

package dos86

import "fmt"

// EncodeMovRegImm16 encodes "MOV r16, imm16" (opcode B8+reg).
func EncodeMovRegImm16(reg Reg16, imm uint16) []byte {
	return []byte{0xB8 + byte(reg), byte(imm), byte(imm >> 8)}
}

// EncodeMovRegImm8 encodes "MOV r8, imm8" (opcode B0+reg).
func EncodeMovRegImm8(reg Reg8, imm byte) []byte {
	return []byte{0xB0 + byte(reg), imm}
}

// EncodeAluRegReg16 encodes "<op> r16dst, r16src" using the Gv,Ev form
// (mod=11) for one of the eight ALU-group mnemonics.
func EncodeAluRegReg16(op Op, dst, src Reg16) ([]byte, error) {
	row, ok := aluOpRow(op)
	if !ok {
		return nil, fmt.Errorf("dos86: %v is not an ALU-group opcode", op)
	}
	opcode := row<<3 | 0x03 // form 3: Gv, Ev
	modrm := 0xC0 | byte(dst)<<3 | byte(src)
	return []byte{opcode, modrm}, nil
}

// EncodePushReg16/EncodePopReg16 encode the 0x50-0x57/0x58-0x5F short
// register forms.
func EncodePushReg16(reg Reg16) []byte { return []byte{0x50 + byte(reg)} }
func EncodePopReg16(reg Reg16) []byte  { return []byte{0x58 + byte(reg)} }

// EncodeInt encodes "INT imm8".
func EncodeInt(vector byte) []byte { return []byte{0xCD, vector} }

// EncodeJmpShort encodes a short (rel8) JMP from a given instruction
// start address to target, returning an error if the displacement
// doesn't fit in a signed byte.
func EncodeJmpShort(fromOff, target uint16) ([]byte, error) {
	rel := int32(target) - int32(fromOff) - 2
	if rel < -128 || rel > 127 {
		return nil, fmt.Errorf("dos86: short jump displacement %d out of range", rel)
	}
	return []byte{0xEB, byte(int8(rel))}, nil
}

// EncodeRet encodes a bare near RET.
func EncodeRet() []byte { return []byte{0xC3} }

// EncodeNop/EncodeHlt encode the corresponding single-byte opcodes.
func EncodeNop() []byte { return []byte{0x90} }
func EncodeHlt() []byte { return []byte{0xF4} }

func aluOpRow(op Op) (byte, bool) {
	for i, o := range aluOps {
		if o == op {
			return byte(i), true
		}
	}
	return 0, false
}
