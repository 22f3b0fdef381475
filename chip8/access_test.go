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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessSave(t *testing.T) {
	vm := boot(t, XOCHIP, 0xF2, 0x55)

	vm.I = 0x400
	accesses := vm.MemAccesses()

	assert.Len(t, accesses, 3)
	assert.Equal(t, MemAccess{Addr: 0x400, Read: false}, accesses[0])
	assert.Equal(t, MemAccess{Addr: 0x402, Read: false}, accesses[2])
}

func TestAccessLoad(t *testing.T) {
	vm := boot(t, XOCHIP, 0xF1, 0x65)

	vm.I = 0x500
	accesses := vm.MemAccesses()

	assert.Len(t, accesses, 2)
	assert.True(t, accesses[0].Read)
}

func TestAccessBCD(t *testing.T) {
	vm := boot(t, XOCHIP, 0xF0, 0x33)

	vm.I = 0x300
	accesses := vm.MemAccesses()

	assert.Len(t, accesses, 3)
	assert.False(t, accesses[0].Read)
}

func TestAccessDraw(t *testing.T) {
	vm := boot(t, XOCHIP, 0xD0, 0x15)

	vm.I = 0x600
	vm.Plane = 3

	// 5 bytes per plane, 2 active planes
	accesses := vm.MemAccesses()
	assert.Len(t, accesses, 10)
	assert.Equal(t, MemAccess{Addr: 0x600, Read: true}, accesses[0])
	assert.Equal(t, MemAccess{Addr: 0x609, Read: true}, accesses[9])
}

func TestAccessWideDraw(t *testing.T) {
	vm := boot(t, XOCHIP, 0xD0, 0x10)

	vm.I = 0x600
	accesses := vm.MemAccesses()

	assert.Len(t, accesses, 32)
}

func TestAccessAudio(t *testing.T) {
	vm := boot(t, XOCHIP, 0xF0, 0x02)

	vm.I = 0x700
	accesses := vm.MemAccesses()

	assert.Len(t, accesses, 16)
	assert.True(t, accesses[0].Read)
}

func TestAccessRange(t *testing.T) {
	vm := boot(t, XOCHIP, 0x51, 0x32)

	vm.I = 0x400
	accesses := vm.MemAccesses()

	assert.Len(t, accesses, 3)
	assert.False(t, accesses[0].Read)

	// range ops are XO-CHIP only
	vm.SetSystem(LSCHIP)
	assert.Empty(t, vm.MemAccesses())
}

func TestAccessNoneWhileHalted(t *testing.T) {
	vm := boot(t, XOCHIP, 0xF2, 0x55)

	vm.Halted = true
	assert.Empty(t, vm.MemAccesses())
}

func TestAccessNoneForALU(t *testing.T) {
	vm := boot(t, XOCHIP, 0x80, 0x14)

	assert.Empty(t, vm.MemAccesses())
}
