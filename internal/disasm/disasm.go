// Package disasm defines a common instruction representation used
// across architecture-specific disassemblers.
package disasm

import (
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// Inst is a simplified decoded instruction.
type Inst struct {
	VA    uint64 // virtual address of instruction
	Text  string // formatted disassembly string
	Op    string // mnemonic in lowercase
	Bytes []byte // raw encoding
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Arch selects the instruction set to decode.
type Arch int

const (
	ArchX86_64 Arch = iota
	ArchARM64
)

// Decode disassembles up to maxInsns instructions from code, assigning
// addresses starting at startVA. Undecodable positions become a ".byte"
// placeholder so the stream stays aligned with the input.
func Decode(arch Arch, code []byte, startVA uint64, maxInsns int) Stream {
	switch arch {
	case ArchARM64:
		return decodeARM64(code, startVA, maxInsns)
	default:
		return decodeX86(code, startVA, maxInsns)
	}
}

func decodeARM64(code []byte, startVA uint64, maxInsns int) Stream {
	var out Stream
	pc := startVA
	for i := 0; i+4 <= len(code) && len(out) < maxInsns; i += 4 {
		word := code[i : i+4]
		inst, err := arm64asm.Decode(word)
		if err != nil {
			out = append(out, rawInst(pc, word))
			pc += 4
			continue
		}
		text := arm64asm.GNUSyntax(inst)
		out = append(out, Inst{
			VA:    pc,
			Text:  text,
			Op:    mnemonic(text),
			Bytes: word,
		})
		pc += 4
	}
	return out
}

func decodeX86(code []byte, startVA uint64, maxInsns int) Stream {
	var out Stream
	pc := startVA
	for i := 0; i < len(code) && len(out) < maxInsns; {
		inst, err := x86asm.Decode(code[i:], 64)
		if err != nil || inst.Len == 0 {
			out = append(out, rawInst(pc, code[i:i+1]))
			i++
			pc++
			continue
		}
		text := x86asm.GNUSyntax(inst, pc, nil)
		out = append(out, Inst{
			VA:    pc,
			Text:  text,
			Op:    mnemonic(text),
			Bytes: code[i : i+inst.Len],
		})
		i += inst.Len
		pc += uint64(inst.Len)
	}
	return out
}

func rawInst(pc uint64, raw []byte) Inst {
	var sb strings.Builder
	sb.WriteString(".byte")
	for i, b := range raw {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, " 0x%02x", b)
	}
	return Inst{VA: pc, Text: sb.String(), Op: ".byte", Bytes: raw}
}

func mnemonic(text string) string {
	if idx := strings.IndexByte(text, ' '); idx > 0 {
		return strings.ToLower(text[:idx])
	}
	return strings.ToLower(text)
}
