/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import "unsafe"

// jitCacheSize bounds the block cache key space. Programs that run
// code above it simply stay on the interpreter.
const jitCacheSize = 0x4000

// infiniteLoopCycles is charged for a jump-to-self block so the driver
// reaches its frame boundary instead of spinning on the cache.
const infiniteLoopCycles = 1000000

// block is one compiled run of guest instructions. It owns an
// executable host memory region until freed.
type block struct {
	// entry is the first byte of host code. Its address doubles as
	// the funcval word used to call the code from Go.
	entry unsafe.Pointer

	// code is the backing executable mapping.
	code []byte
}

// notJittable marks cache slots whose guest instruction the compiler
// refuses; those PCs always fall through to the interpreter.
var notJittable = &block{}

// call transfers control to the compiled code. The code receives the
// machine state pointer and returns how many guest cycles it retired.
func (b *block) call(vm *CHIP_8) int {
	fv := unsafe.Pointer(&b.entry)
	fn := *(*func(*CHIP_8) int)(unsafe.Pointer(&fv))

	return fn(vm)
}

// free releases the executable mapping.
func (b *block) free() {
	if b.code != nil {
		freeExec(b.code)
		b.code = nil
	}
}

// RunBlock executes one compiled block at the current PC and returns
// the number of guest cycles consumed. When the PC has no block - the
// machine is halted, the instruction is not jittable, or the PC is
// outside the cache - a single interpreter step runs instead.
func (vm *CHIP_8) RunBlock() (int, error) {
	if vm.Halted || int(vm.PC) >= jitCacheSize {
		return 1, vm.Step()
	}

	pc := vm.PC

	b := vm.blocks[pc]
	if b == nil {
		if b = vm.compileBlock(pc); b == nil {
			b = notJittable
		}

		vm.blocks[pc] = b
	}

	if b == notJittable {
		return 1, vm.Step()
	}

	return b.call(vm), nil
}

// ClearBlocks evicts every compiled block and releases its host code.
// Called when the translated guest bytes can no longer be trusted:
// loading a ROM, resetting, or switching systems.
func (vm *CHIP_8) ClearBlocks() {
	for i, b := range vm.blocks {
		if b != nil && b != notJittable {
			b.free()
		}

		vm.blocks[i] = nil
	}
}

// Close releases all host resources owned by the emulator.
func (vm *CHIP_8) Close() error {
	vm.ClearBlocks()

	return nil
}

// jittable reports whether the translator is willing to emit host code
// for an instruction. Everything else - scrolls, plane and audio ops,
// font pointers, the flag file, BNNN - falls back to the interpreter.
func jittable(inst uint16) bool {
	switch inst >> 12 {
	case 0x0:
		return inst == 0x00E0 || inst == 0x00EE || inst == 0x00FE || inst == 0x00FF
	case 0x1, 0x2, 0x3, 0x4:
		return true
	case 0x5:
		n := inst & 0xF
		return n == 0 || n == 2 || n == 3
	case 0x6, 0x7:
		return true
	case 0x8:
		n := inst & 0xF
		return n <= 7 || n == 0xE
	case 0x9:
		return inst&0xF == 0
	case 0xA, 0xC, 0xD:
		return true
	case 0xE:
		return inst&0xFF == 0x9E || inst&0xFF == 0xA1
	case 0xF:
		switch inst & 0xFF {
		case 0x07, 0x0A, 0x15, 0x18, 0x1E, 0x33, 0x55, 0x65:
			return true
		case 0x00:
			return inst == 0xF000
		}
	}

	return false
}

// Helper thunks. Opcodes with too much behavior to inline are called
// out of compiled code with the state pointer and the raw opcode.

func jitClear(vm *CHIP_8, op uint16) {
	vm.cls()
}

func jitDraw(vm *CHIP_8, op uint16) {
	vm.drawSprite(op>>8&0xF, op>>4&0xF, byte(op&0xF))
}

func jitRandom(vm *CHIP_8, op uint16) {
	vm.loadRandom(op>>8&0xF, byte(op&0xFF))
}
