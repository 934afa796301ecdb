package cpu

import "github.com/pkg/errors"

// ErrUnimplementedOpcode is returned by Step when the CPU decodes one of
// the opcodes that have no defined behaviour (0xD3, 0xDB, 0xDD, 0xE3,
// 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC and 0xFD). On hardware these lock
// up the CPU.
var ErrUnimplementedOpcode = errors.New("unimplemented opcode")
