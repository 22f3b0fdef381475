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
	"github.com/stretchr/testify/require"
)

// lit counts set pixels in the given plane.
func lit(vm *CHIP_8, planeID byte) int {
	n := 0
	for _, b := range vm.Video {
		if b&planeID != 0 {
			n++
		}
	}

	return n
}

func TestDrawXORCollision(t *testing.T) {
	vm := boot(t, XOCHIP, 0xD0, 0x15, 0xD0, 0x15)

	vm.I = 0x50 // font glyph '0'
	vm.HighRes = true
	vm.Plane = 1

	// first draw lights the glyph with no collision
	run(t, vm, 1)
	assert.Equal(t, byte(0), vm.V[0xF])
	assert.NotZero(t, lit(vm, 1))

	// the glyph '0' is 4x5 with 14 set pixels
	assert.Equal(t, 14, lit(vm, 1))

	// second draw erases every pixel and collides
	run(t, vm, 1)
	assert.Equal(t, byte(1), vm.V[0xF])
	assert.Zero(t, lit(vm, 1))
}

func TestDrawLoResDoubles(t *testing.T) {
	vm := boot(t, XOCHIP, 0xD0, 0x11)

	// one row, one bit: a 2x2 block in lo-res
	vm.Memory[0x600] = 0x80
	vm.I = 0x600
	vm.V[0] = 3
	vm.V[1] = 5

	run(t, vm, 1)

	assert.Equal(t, 4, lit(vm, 1))
	assert.Equal(t, byte(1), vm.Video[10*W+6])
	assert.Equal(t, byte(1), vm.Video[10*W+7])
	assert.Equal(t, byte(1), vm.Video[11*W+6])
	assert.Equal(t, byte(1), vm.Video[11*W+7])
}

func TestDrawClippingQuirk(t *testing.T) {
	vm := boot(t, LSCHIP, 0xD0, 0x11)

	// one full row at the right edge
	vm.Memory[0x600] = 0xFF
	vm.I = 0x600
	vm.V[0] = 124
	vm.V[1] = 0
	vm.HighRes = true

	// clipping drops the pixels past the edge
	run(t, vm, 1)
	assert.Equal(t, 4, lit(vm, 1))

	// wrap brings them around instead; the redraw also erases the
	// first four pixels again
	vm.QuirkClipping = false
	vm.PC = 0x200
	run(t, vm, 1)

	assert.Equal(t, byte(1), vm.V[0xF])
	assert.Equal(t, byte(0), vm.Video[124])
	assert.Equal(t, byte(1), vm.Video[0])
	assert.Equal(t, byte(1), vm.Video[3])
	assert.Equal(t, 4, lit(vm, 1))
}

func TestDrawBottomWrap(t *testing.T) {
	vm := boot(t, XOCHIP, 0xD0, 0x12)

	vm.Memory[0x600] = 0x80
	vm.Memory[0x601] = 0x80
	vm.I = 0x600
	vm.V[0] = 0
	vm.V[1] = 63
	vm.HighRes = true

	// no clipping: the second row wraps to the top
	run(t, vm, 1)
	assert.Equal(t, byte(1), vm.Video[63*W])
	assert.Equal(t, byte(1), vm.Video[0])
}

func TestDrawPlanes(t *testing.T) {
	vm := boot(t, XOCHIP, 0xD0, 0x11)

	// one sprite block per active plane, read back to back
	vm.Memory[0x600] = 0x80
	vm.Memory[0x601] = 0xC0
	vm.I = 0x600
	vm.Plane = 3
	vm.HighRes = true

	run(t, vm, 1)

	assert.Equal(t, byte(3), vm.Video[0]) // plane 1 + plane 2
	assert.Equal(t, byte(2), vm.Video[1]) // plane 2 only
	assert.Equal(t, byte(0), vm.V[0xF])
}

func TestDrawWideSprite(t *testing.T) {
	vm := boot(t, XOCHIP, 0xD0, 0x10)

	// DXY0: 16 rows of 16 bits
	for i := 0; i < 32; i++ {
		vm.Memory[0x600+i] = 0xFF
	}

	vm.I = 0x600
	vm.HighRes = true

	run(t, vm, 1)
	assert.Equal(t, 16*16, lit(vm, 1))
}

func TestDisplayWait(t *testing.T) {
	vm := boot(t, CHIP8, 0xD0, 0x11)

	vm.I = 0x600
	require.NoError(t, vm.Step())

	// lo-res draw on the original system waits for vblank
	assert.True(t, vm.WaitVBlank)

	vm = boot(t, XOCHIP, 0xD0, 0x11)
	vm.I = 0x600
	require.NoError(t, vm.Step())

	assert.False(t, vm.WaitVBlank)
}

func TestClearRespectsPlane(t *testing.T) {
	vm := boot(t, XOCHIP, 0x00, 0xE0)

	for i := range vm.Video {
		vm.Video[i] = 3
	}

	vm.Plane = 1
	run(t, vm, 1)

	assert.Equal(t, byte(2), vm.Video[0])
	assert.Equal(t, byte(2), vm.Video[len(vm.Video)-1])
}

func TestPalette(t *testing.T) {
	vm := New(XOCHIP)

	assert.Equal(t, [4]byte{0x22, 0x22, 0x22, 0xFF}, vm.PixelRGBA(0))
	assert.Equal(t, [4]byte{0xFF, 0xFF, 0xFF, 0xFF}, vm.PixelRGBA(1))
	assert.Equal(t, [4]byte{0x00, 0x44, 0xAA, 0xFF}, vm.PixelRGBA(2))
	assert.Equal(t, [4]byte{0xAA, 0x55, 0x00, 0xFF}, vm.PixelRGBA(3))

	// only the low 2 bits matter with the palette option off
	assert.Equal(t, vm.PixelRGBA(1), vm.PixelRGBA(5))

	vm.Quirk16Colors = true
	assert.Equal(t, [4]byte{0x00, 0xFF, 0x00, 0xFF}, vm.PixelRGBA(5))
}

func TestRender(t *testing.T) {
	vm := New(XOCHIP)
	vm.Video[1] = 1

	frame := make([]byte, W*H*4)
	vm.Render(frame)

	assert.Equal(t, []byte{0x22, 0x22, 0x22, 0xFF}, frame[0:4])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, frame[4:8])
}
