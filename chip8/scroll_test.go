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

func TestScrollDown(t *testing.T) {
	vm := boot(t, XOCHIP, 0x00, 0xC2) // scroll-down 2

	vm.HighRes = true
	vm.Video[5*W+10] = 1

	run(t, vm, 1)

	assert.Equal(t, byte(0), vm.Video[5*W+10])
	assert.Equal(t, byte(1), vm.Video[7*W+10])
}

func TestScrollDownLoResDoubles(t *testing.T) {
	vm := boot(t, XOCHIP, 0x00, 0xC1)

	// lo-res with the full-pixel quirk scrolls twice
	vm.Video[5*W+10] = 1

	run(t, vm, 1)

	assert.Equal(t, byte(0), vm.Video[5*W+10])
	assert.Equal(t, byte(1), vm.Video[7*W+10])
}

func TestScrollUp(t *testing.T) {
	vm := boot(t, XOCHIP, 0x00, 0xD2)

	vm.HighRes = true
	vm.Video[5*W+10] = 1
	vm.Video[1*W] = 1

	run(t, vm, 1)

	assert.Equal(t, byte(1), vm.Video[3*W+10])
	assert.Equal(t, byte(0), vm.Video[1*W])
}

func TestScrollLeft(t *testing.T) {
	vm := boot(t, XOCHIP, 0x00, 0xFC)

	vm.HighRes = true
	vm.Video[3*W+10] = 1

	run(t, vm, 1)

	assert.Equal(t, byte(0), vm.Video[3*W+10])
	assert.Equal(t, byte(1), vm.Video[3*W+6])
}

func TestScrollRight(t *testing.T) {
	vm := boot(t, XOCHIP, 0x00, 0xFB)

	vm.HighRes = true
	vm.Video[3*W+10] = 1
	vm.Video[3*W+126] = 1

	run(t, vm, 1)

	assert.Equal(t, byte(1), vm.Video[3*W+14])

	// pixels pushed past the edge vanish
	assert.Equal(t, byte(0), vm.Video[3*W+126])
}

func TestScrollMasksPlanes(t *testing.T) {
	vm := boot(t, XOCHIP, 0x00, 0xC2)

	vm.HighRes = true
	vm.Video[0] = 3 // both planes lit at the top-left

	// only plane 1 scrolls; plane 2 stays put
	vm.Plane = 1
	run(t, vm, 1)

	assert.Equal(t, byte(2), vm.Video[0])
	assert.Equal(t, byte(1), vm.Video[2*W])
}

func TestScrollIgnoredOnCHIP8(t *testing.T) {
	vm := boot(t, CHIP8, 0x00, 0xC2)

	vm.Video[10] = 1
	run(t, vm, 1)

	assert.Equal(t, byte(1), vm.Video[10])
}
