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

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Display dimensions. Lo-res systems are emulated as hi-res with 2x2
// pixel blocks, so video memory is always full size.
const (
	W = 128
	H = 64
)

// PlaneBits is how many independent bitplanes each video byte holds.
// Classic systems only ever touch plane 0; XO-CHIP uses up to four.
const PlaneBits = 4

// System selects which member of the CHIP-8 family is emulated.
type System byte

const (
	// CHIP8 is the original COSMAC VIP interpreter.
	CHIP8 System = iota

	// LSCHIP is SCHIP 1.1 as found on real HP-48 calculators.
	LSCHIP

	// MSCHIP is SCHIP with the display behavior most modern ROMs assume.
	MSCHIP

	// XOCHIP is John Earnest's XO-CHIP extension.
	XOCHIP
)

// CHIP_8 virtual machine emulator.
//
// All architectural state is exported so that external debugger views
// (disassembler, memory editor, watchpoints) can inspect and poke it
// directly. The interpreter and the JIT both mutate this struct; the
// JIT computes field offsets once and passes the struct's address to
// compiled code, so the struct must not be copied while blocks exist.
type CHIP_8 struct {
	// Memory is the 64 KiB linear address space. Classic CHIP-8 only
	// addresses the low 4 KiB but XO-CHIP instructions carry 16-bit
	// addresses, so the full space is always allocated. The small
	// font lives at 0x050, the large font at 0x0A0, programs at 0x200.
	Memory [0x10000]byte

	// Video holds one byte per pixel. Each byte packs up to PlaneBits
	// plane bits; the palette maps the byte value to a host color.
	Video [W * H]byte

	// V are the 16 virtual registers.
	V [16]byte

	// I is the address register.
	I uint16

	// PC is the program counter. All programs begin at 0x200.
	PC uint16

	// Stack holds up to 16 return addresses.
	Stack [16]uint16

	// SP is the stack pointer, empty-ascending.
	SP byte

	// Delay and Sound are the 8-bit timers. The core never decrements
	// them; the host driver calls TickTimers once per 60 Hz frame.
	Delay byte
	Sound byte

	// Plane is the bitplane mask applied by draw, clear, and scroll.
	Plane byte

	// Audio is the XO-CHIP 16-byte audio pattern buffer and Pitch its
	// playback frequency parameter.
	Audio [16]byte
	Pitch byte

	// HighRes is true in 128x64 mode.
	HighRes bool

	// Halted is true while FX0A waits on the keypad.
	Halted bool

	// WaitVBlank is set after a draw when the display-wait quirk asks
	// the driver to yield until the next frame boundary.
	WaitVBlank bool

	// Paused is owned by the host driver; the core never reads it.
	Paused bool

	// Keys hold the current state of the 16-key pad.
	Keys [16]bool

	// Sys is the emulated family member. Use SetSystem to change it so
	// the quirk profile is reset to the canonical preset.
	Sys System

	// The quirk profile. Quirks are read at execution time, by the
	// interpreter and by JIT-compiled code alike, so toggling one
	// takes effect on the next instruction.
	QuirkVFReset         bool
	QuirkMemory          bool
	QuirkDispWait        bool
	QuirkClipping        bool
	QuirkShifting        bool
	QuirkJumping         bool
	QuirkDispWaitLores   bool
	QuirkScrollFullLores bool
	Quirk16Colors        bool

	// FlagsPath is where FX75/FX85 persist the flag registers.
	FlagsPath string

	// Size is the size of the loaded ROM in bytes.
	Size int

	// haltReg is the V register FX0A fills; haltRelease is true once
	// a key was latched and we wait for it to come back up.
	haltReg     byte
	haltRelease bool

	// rom is a pristine copy of the program for Reset.
	rom []byte

	// rng drives CXNN.
	rng *rand.Rand

	// blocks is the JIT block cache, keyed by entry PC.
	blocks [jitCacheSize]*block
}

// Exit is the error returned by Step when the program executes 00FD
// on any system but CHIP-8, where 00FD does nothing. It is a terminal
// event, not a failure.
type Exit struct {
	// PC is the address of the exit instruction.
	PC uint16
}

// Error implements the error interface for Exit.
func (e Exit) Error() string {
	return fmt.Sprintf("program exit @ %04X", e.PC)
}

// New creates a CHIP-8 virtual machine emulating the given system.
func New(sys System) *CHIP_8 {
	vm := &CHIP_8{
		FlagsPath: FlagsFname,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// apply the canonical quirk preset
	vm.SetSystem(sys)
	vm.Reset()

	return vm
}

// LoadROM copies a program into memory at 0x200 and resets the machine.
func (vm *CHIP_8) LoadROM(program []byte) error {
	if len(program) > len(vm.Memory)-0x200 {
		return errors.New("program too large to fit in memory")
	}

	// keep a pristine copy for Reset
	vm.rom = make([]byte, len(program))
	copy(vm.rom, program)

	vm.Size = len(program)
	vm.Reset()

	return nil
}

// Reset the virtual machine back to its power-on state. The loaded ROM
// and the system/quirk profile survive; everything else is cleared.
func (vm *CHIP_8) Reset() {
	vm.Memory = [0x10000]byte{}

	// font sprites and program
	copy(vm.Memory[0x50:], SmallFont[:])
	copy(vm.Memory[0xA0:], LargeFont[:])
	copy(vm.Memory[0x200:], vm.rom)

	// registers and stack
	vm.V = [16]byte{}
	vm.Stack = [16]uint16{}
	vm.I = 0
	vm.PC = 0x200
	vm.SP = 0

	// video and audio
	vm.Video = [W * H]byte{}
	vm.Audio = [16]byte{}
	vm.Plane = 1
	vm.Pitch = 0
	vm.HighRes = false

	// timers and keys
	vm.Delay = 0
	vm.Sound = 0
	vm.Keys = [16]bool{}

	// not waiting on anything
	vm.Halted = false
	vm.haltRelease = false
	vm.WaitVBlank = false

	// compiled blocks translate stale program bytes
	vm.ClearBlocks()
}

// SetSystem switches the emulated system and resets the quirk profile
// to that system's canonical preset.
func (vm *CHIP_8) SetSystem(sys System) {
	switch sys {
	case CHIP8:
		vm.QuirkVFReset = true
		vm.QuirkMemory = true
		vm.QuirkDispWait = true
		vm.QuirkClipping = true
		vm.QuirkShifting = false
		vm.QuirkJumping = false
		vm.QuirkDispWaitLores = true
		vm.QuirkScrollFullLores = true
	case LSCHIP:
		vm.QuirkVFReset = false
		vm.QuirkMemory = false
		vm.QuirkDispWait = true
		vm.QuirkClipping = true
		vm.QuirkShifting = true
		vm.QuirkJumping = true
		vm.QuirkDispWaitLores = true
		vm.QuirkScrollFullLores = false
	case MSCHIP:
		vm.QuirkVFReset = false
		vm.QuirkMemory = false
		vm.QuirkDispWait = true
		vm.QuirkClipping = true
		vm.QuirkShifting = true
		vm.QuirkJumping = true
		vm.QuirkDispWaitLores = false
		vm.QuirkScrollFullLores = true
	case XOCHIP:
		vm.QuirkVFReset = false
		vm.QuirkMemory = true
		vm.QuirkDispWait = true
		vm.QuirkClipping = false
		vm.QuirkShifting = false
		vm.QuirkJumping = false
		vm.QuirkDispWaitLores = false
		vm.QuirkScrollFullLores = true
	}

	// the palette option is host preference, not a variant behavior
	vm.Quirk16Colors = false
	vm.Sys = sys

	// compiled blocks bake system-dependent instruction widths
	vm.ClearBlocks()
}

// SeedRandom makes CXNN reproducible.
func (vm *CHIP_8) SeedRandom(seed int64) {
	vm.rng = rand.New(rand.NewSource(seed))
}

// PressKey emulates a CHIP-8 key being pressed.
func (vm *CHIP_8) PressKey(key uint) {
	if key < 16 {
		vm.Keys[key] = true
	}
}

// ReleaseKey emulates a CHIP-8 key being released.
func (vm *CHIP_8) ReleaseKey(key uint) {
	if key < 16 {
		vm.Keys[key] = false
	}
}

// TickTimers decrements the delay and sound timers. The host driver
// calls this once per 60 Hz frame.
func (vm *CHIP_8) TickTimers() {
	if vm.Delay > 0 {
		vm.Delay -= 1
	}
	if vm.Sound > 0 {
		vm.Sound -= 1
	}
}

// Fetch the 16-bit instruction at PC and advance past it.
func (vm *CHIP_8) fetch() uint16 {
	i := vm.PC

	// advance the program counter
	vm.PC += 2

	// instructions are big-endian
	return uint16(vm.Memory[i])<<8 | uint16(vm.Memory[i+1])
}

// skip the next instruction. XO-CHIP's long form F000 NNNN is 4 bytes
// wide and must be hopped over in one piece.
func (vm *CHIP_8) skip() {
	if vm.Sys == XOCHIP && vm.Memory[vm.PC] == 0xF0 && vm.Memory[vm.PC+1] == 0x00 {
		vm.PC += 4
	} else {
		vm.PC += 2
	}
}

// stepHalted polls the keypad while FX0A waits. Phase one latches the
// lowest held key into the destination register; phase two waits for
// that key to come back up before resuming.
func (vm *CHIP_8) stepHalted() {
	if !vm.haltRelease {
		for i := byte(0); i < 16; i++ {
			if vm.Keys[i] {
				vm.V[vm.haltReg] = i
				vm.haltRelease = true
				break
			}
		}
	} else if !vm.Keys[vm.V[vm.haltReg]] {
		vm.Halted = false
		vm.haltRelease = false
		vm.PC += 2
	}
}

// Step the virtual machine a single instruction.
func (vm *CHIP_8) Step() error {
	if vm.Halted {
		vm.stepHalted()
		return nil
	}

	// fetch the next instruction
	inst := vm.fetch()

	// 12-bit address operand
	a := inst & 0xFFF

	// byte and nibble operands
	b := byte(inst & 0xFF)
	n := byte(inst & 0xF)

	// x and y register operands
	x := inst >> 8 & 0xF
	y := inst >> 4 & 0xF

	// instruction decoding
	if inst == 0x00E0 {
		vm.cls()
	} else if inst == 0x00EE {
		vm.ret()
	} else if inst == 0x00FB {
		vm.scrollRight()
	} else if inst == 0x00FC {
		vm.scrollLeft()
	} else if inst == 0x00FD {
		return vm.exit()
	} else if inst == 0x00FE {
		vm.low()
	} else if inst == 0x00FF {
		vm.high()
	} else if inst&0xFFF0 == 0x00C0 {
		vm.scrollDown(n)
	} else if inst&0xFFF0 == 0x00D0 {
		vm.scrollUp(n)
	} else if inst&0xF000 == 0x1000 {
		vm.jump(a)
	} else if inst&0xF000 == 0x2000 {
		vm.call(a)
	} else if inst&0xF000 == 0x3000 {
		vm.skipIf(x, b)
	} else if inst&0xF000 == 0x4000 {
		vm.skipIfNot(x, b)
	} else if inst&0xF00F == 0x5000 {
		vm.skipIfXY(x, y)
	} else if inst&0xF00F == 0x5002 {
		vm.saveRange(x, y)
	} else if inst&0xF00F == 0x5003 {
		vm.loadRange(x, y)
	} else if inst&0xF000 == 0x6000 {
		vm.loadX(x, b)
	} else if inst&0xF000 == 0x7000 {
		vm.addX(x, b)
	} else if inst&0xF00F == 0x8000 {
		vm.loadXY(x, y)
	} else if inst&0xF00F == 0x8001 {
		vm.or(x, y)
	} else if inst&0xF00F == 0x8002 {
		vm.and(x, y)
	} else if inst&0xF00F == 0x8003 {
		vm.xor(x, y)
	} else if inst&0xF00F == 0x8004 {
		vm.addXY(x, y)
	} else if inst&0xF00F == 0x8005 {
		vm.subXY(x, y)
	} else if inst&0xF00F == 0x8006 {
		vm.shr(x, y)
	} else if inst&0xF00F == 0x8007 {
		vm.subYX(x, y)
	} else if inst&0xF00F == 0x800E {
		vm.shl(x, y)
	} else if inst&0xF00F == 0x9000 {
		vm.skipIfNotXY(x, y)
	} else if inst&0xF000 == 0xA000 {
		vm.loadI(a)
	} else if inst&0xF000 == 0xB000 {
		vm.jumpV(a, x)
	} else if inst&0xF000 == 0xC000 {
		vm.loadRandom(x, b)
	} else if inst&0xF000 == 0xD000 {
		vm.drawSprite(x, y, n)
	} else if inst&0xF0FF == 0xE09E {
		vm.skipIfPressed(x)
	} else if inst&0xF0FF == 0xE0A1 {
		vm.skipIfNotPressed(x)
	} else if inst == 0xF000 {
		vm.loadILong()
	} else if inst&0xF0FF == 0xF001 {
		vm.plane(byte(x))
	} else if inst == 0xF002 {
		vm.audio()
	} else if inst&0xF0FF == 0xF007 {
		vm.loadXDT(x)
	} else if inst&0xF0FF == 0xF00A {
		vm.loadXK(x)
	} else if inst&0xF0FF == 0xF015 {
		vm.loadDTX(x)
	} else if inst&0xF0FF == 0xF018 {
		vm.loadSTX(x)
	} else if inst&0xF0FF == 0xF01E {
		vm.addIX(x)
	} else if inst&0xF0FF == 0xF029 {
		vm.loadF(x)
	} else if inst&0xF0FF == 0xF030 {
		vm.loadHF(x)
	} else if inst&0xF0FF == 0xF033 {
		vm.bcd(x)
	} else if inst&0xF0FF == 0xF03A {
		vm.loadPitch(x)
	} else if inst&0xF0FF == 0xF055 {
		vm.saveRegs(x)
	} else if inst&0xF0FF == 0xF065 {
		vm.loadRegs(x)
	} else if inst&0xF0FF == 0xF075 {
		return vm.storeFlags(x)
	} else if inst&0xF0FF == 0xF085 {
		return vm.readFlags(x)
	} else {
		return fmt.Errorf("invalid opcode: %04X", inst)
	}

	return nil
}

// Clear the active planes of video memory.
func (vm *CHIP_8) cls() {
	mask := ^vm.Plane

	for i := range vm.Video {
		vm.Video[i] &= mask
	}
}

// Call a subroutine at address.
func (vm *CHIP_8) call(address uint16) {
	vm.Stack[vm.SP] = vm.PC
	vm.SP += 1

	// jump to address
	vm.PC = address
}

// Return from subroutine.
func (vm *CHIP_8) ret() {
	vm.SP -= 1
	vm.PC = vm.Stack[vm.SP]
}

// Exit the interpreter.
func (vm *CHIP_8) exit() error {
	if vm.Sys == CHIP8 {
		return nil
	}

	return Exit{PC: vm.PC - 2}
}

// Set low res mode.
func (vm *CHIP_8) low() {
	if vm.Sys != CHIP8 {
		vm.HighRes = false
	}
}

// Set high res mode.
func (vm *CHIP_8) high() {
	if vm.Sys != CHIP8 {
		vm.HighRes = true
	}
}

// Jump to address.
func (vm *CHIP_8) jump(address uint16) {
	vm.PC = address
}

// Jump to address + V0, or + VX with the jumping quirk.
func (vm *CHIP_8) jumpV(address, x uint16) {
	if vm.QuirkJumping {
		vm.PC = address + uint16(vm.V[x])
	} else {
		vm.PC = address + uint16(vm.V[0])
	}
}

// Skip next instruction if vx == n.
func (vm *CHIP_8) skipIf(x uint16, b byte) {
	if vm.V[x] == b {
		vm.skip()
	}
}

// Skip next instruction if vx != n.
func (vm *CHIP_8) skipIfNot(x uint16, b byte) {
	if vm.V[x] != b {
		vm.skip()
	}
}

// Skip next instruction if vx == vy.
func (vm *CHIP_8) skipIfXY(x, y uint16) {
	if vm.V[x] == vm.V[y] {
		vm.skip()
	}
}

// Skip next instruction if vx != vy.
func (vm *CHIP_8) skipIfNotXY(x, y uint16) {
	if vm.V[x] != vm.V[y] {
		vm.skip()
	}
}

// Skip next instruction if key(vx) is pressed.
func (vm *CHIP_8) skipIfPressed(x uint16) {
	if vm.Keys[vm.V[x]&0xF] {
		vm.skip()
	}
}

// Skip next instruction if key(vx) is not pressed.
func (vm *CHIP_8) skipIfNotPressed(x uint16) {
	if !vm.Keys[vm.V[x]&0xF] {
		vm.skip()
	}
}

// Save vx..vy to memory at I. XO-CHIP only; I is left alone.
func (vm *CHIP_8) saveRange(x, y uint16) {
	if vm.Sys != XOCHIP {
		return
	}

	i := vm.I
	for reg := x; reg <= y; reg++ {
		vm.Memory[i] = vm.V[reg]
		i += 1
	}
}

// Load vx..vy from memory at I. XO-CHIP only; I is left alone.
func (vm *CHIP_8) loadRange(x, y uint16) {
	if vm.Sys != XOCHIP {
		return
	}

	i := vm.I
	for reg := x; reg <= y; reg++ {
		vm.V[reg] = vm.Memory[i]
		i += 1
	}
}

// Load n into vx.
func (vm *CHIP_8) loadX(x uint16, b byte) {
	vm.V[x] = b
}

// Add n to vx. No carry, wraps mod 256.
func (vm *CHIP_8) addX(x uint16, b byte) {
	vm.V[x] += b
}

// Load vy into vx.
func (vm *CHIP_8) loadXY(x, y uint16) {
	vm.V[x] = vm.V[y]
}

// Bitwise or vx with vy into vx.
func (vm *CHIP_8) or(x, y uint16) {
	vm.V[x] |= vm.V[y]

	if vm.QuirkVFReset {
		vm.V[0xF] = 0
	}
}

// Bitwise and vx with vy into vx.
func (vm *CHIP_8) and(x, y uint16) {
	vm.V[x] &= vm.V[y]

	if vm.QuirkVFReset {
		vm.V[0xF] = 0
	}
}

// Bitwise xor vx with vy into vx.
func (vm *CHIP_8) xor(x, y uint16) {
	vm.V[x] ^= vm.V[y]

	if vm.QuirkVFReset {
		vm.V[0xF] = 0
	}
}

// Add vy to vx; vf is the carry, written after the result so that the
// flag wins when vx is vf itself.
func (vm *CHIP_8) addXY(x, y uint16) {
	res := vm.V[x] + vm.V[y]
	carry := res < vm.V[y]

	vm.V[x] = res
	vm.V[0xF] = flag(carry)
}

// Subtract vy from vx; vf is set if there was no borrow.
func (vm *CHIP_8) subXY(x, y uint16) {
	noBorrow := vm.V[x] >= vm.V[y]

	vm.V[x] -= vm.V[y]
	vm.V[0xF] = flag(noBorrow)
}

// Subtract vx from vy into vx; vf is set if there was no borrow.
func (vm *CHIP_8) subYX(x, y uint16) {
	noBorrow := vm.V[y] >= vm.V[x]

	vm.V[x] = vm.V[y] - vm.V[x]
	vm.V[0xF] = flag(noBorrow)
}

// Shift right one bit; vf is the bit shifted out. The operand is vy,
// or vx with the shifting quirk.
func (vm *CHIP_8) shr(x, y uint16) {
	src := vm.V[y]
	if vm.QuirkShifting {
		src = vm.V[x]
	}

	vm.V[x] = src >> 1
	vm.V[0xF] = src & 1
}

// Shift left one bit; vf is the bit shifted out. The operand is vy,
// or vx with the shifting quirk.
func (vm *CHIP_8) shl(x, y uint16) {
	src := vm.V[y]
	if vm.QuirkShifting {
		src = vm.V[x]
	}

	vm.V[x] = src << 1
	vm.V[0xF] = src >> 7
}

// Load address register.
func (vm *CHIP_8) loadI(address uint16) {
	vm.I = address
}

// Load the 16-bit operand following F000 into I.
func (vm *CHIP_8) loadILong() {
	if vm.Sys != XOCHIP {
		return
	}

	vm.I = uint16(vm.Memory[vm.PC])<<8 | uint16(vm.Memory[vm.PC+1])
	vm.PC += 2
}

// Set the bitplane mask for subsequent draw/clear/scroll.
func (vm *CHIP_8) plane(n byte) {
	if vm.Sys != XOCHIP {
		return
	}

	vm.Plane = n & (1<<PlaneBits - 1)
}

// Copy 16 bytes at I into the audio pattern buffer.
func (vm *CHIP_8) audio() {
	if vm.Sys != XOCHIP {
		return
	}

	for i := uint16(0); i < 16; i++ {
		vm.Audio[i] = vm.Memory[vm.I+i]
	}
}

// Load a random number & n into vx.
func (vm *CHIP_8) loadRandom(x uint16, b byte) {
	vm.V[x] = byte(vm.rng.Intn(256)) & b
}

// Load delay timer into vx.
func (vm *CHIP_8) loadXDT(x uint16) {
	vm.V[x] = vm.Delay
}

// Load vx into delay timer.
func (vm *CHIP_8) loadDTX(x uint16) {
	vm.Delay = vm.V[x]
}

// Load vx into sound timer.
func (vm *CHIP_8) loadSTX(x uint16) {
	vm.Sound = vm.V[x]
}

// Halt, waiting for a key press (and its release) into vx. The PC is
// rewound so the instruction re-executes until stepHalted resumes.
func (vm *CHIP_8) loadXK(x uint16) {
	vm.Halted = true
	vm.haltReg = byte(x)
	vm.haltRelease = false
	vm.PC -= 2
}

// Add vx to I. Outside XO-CHIP the address register is 12 bits.
func (vm *CHIP_8) addIX(x uint16) {
	vm.I += uint16(vm.V[x])

	if vm.Sys != XOCHIP {
		vm.I &= 0xFFF
	}
}

// Point I at the small font sprite for vx.
func (vm *CHIP_8) loadF(x uint16) {
	vm.I = 0x50 + uint16(vm.V[x])*5
}

// Point I at the large font sprite for vx. Not on CHIP-8.
func (vm *CHIP_8) loadHF(x uint16) {
	if vm.Sys == CHIP8 {
		return
	}

	vm.I = 0xA0 + uint16(vm.V[x])*10
}

// Write the BCD of vx at I.
func (vm *CHIP_8) bcd(x uint16) {
	n := vm.V[x]

	vm.Memory[vm.I+0] = n / 100
	vm.Memory[vm.I+1] = n / 10 % 10
	vm.Memory[vm.I+2] = n % 10
}

// Set the audio pattern playback pitch.
func (vm *CHIP_8) loadPitch(x uint16) {
	if vm.Sys != XOCHIP {
		return
	}

	vm.Pitch = vm.V[x]
}

// Save registers v0..vx to I. The memory quirk advances I past the
// written bytes, as the original interpreters did.
func (vm *CHIP_8) saveRegs(x uint16) {
	for i := uint16(0); i <= x; i++ {
		vm.Memory[vm.I+i] = vm.V[i]
	}

	if vm.QuirkMemory {
		vm.I += x + 1
	}
}

// Load registers v0..vx from I.
func (vm *CHIP_8) loadRegs(x uint16) {
	for i := uint16(0); i <= x; i++ {
		vm.V[i] = vm.Memory[vm.I+i]
	}

	if vm.QuirkMemory {
		vm.I += x + 1
	}
}

// flag converts a condition to a VF value.
func flag(b bool) byte {
	if b {
		return 1
	}

	return 0
}
