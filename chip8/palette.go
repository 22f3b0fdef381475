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

// Palette4 maps the two low plane bits of a video byte to RGBA when
// the 16-color option is off.
var Palette4 = [4][4]byte{
	{0x22, 0x22, 0x22, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0x00, 0x44, 0xAA, 0xFF},
	{0xAA, 0x55, 0x00, 0xFF},
}

// Palette16 maps all four plane bits of a video byte to RGBA when the
// 16-color option is on.
var Palette16 = [16][4]byte{
	{0x00, 0x00, 0x00, 0xFF}, // black
	{0xFF, 0xFF, 0xFF, 0xFF}, // white
	{0xAA, 0xAA, 0xAA, 0xFF}, // light grey
	{0x55, 0x55, 0x55, 0xFF}, // dark grey
	{0xFF, 0x00, 0x00, 0xFF}, // red
	{0x00, 0xFF, 0x00, 0xFF}, // green
	{0x00, 0x00, 0xFF, 0xFF}, // blue
	{0xFF, 0xFF, 0x00, 0xFF}, // yellow
	{0x88, 0x00, 0x00, 0xFF}, // dark red
	{0x00, 0x88, 0x00, 0xFF}, // dark green
	{0x00, 0x00, 0x88, 0xFF}, // dark blue
	{0x88, 0x88, 0x00, 0xFF}, // olive
	{0xFF, 0x00, 0xFF, 0xFF}, // magenta
	{0x00, 0xFF, 0xFF, 0xFF}, // cyan
	{0x88, 0x00, 0x88, 0xFF}, // purple
	{0x00, 0x88, 0x88, 0xFF}, // teal
}

// PixelRGBA maps a video byte to its RGBA color under the current
// palette option. The color depends only on the byte value and the
// 16-color toggle.
func (vm *CHIP_8) PixelRGBA(b byte) [4]byte {
	if vm.Quirk16Colors {
		return Palette16[b&0xF]
	}

	return Palette4[b&0x3]
}

// Render fills an RGBA frame buffer (W*H*4 bytes) from video memory.
// The host blitter hands this straight to its texture upload.
func (vm *CHIP_8) Render(frame []byte) {
	for i, b := range vm.Video {
		c := vm.PixelRGBA(b)
		copy(frame[i*4:], c[:])
	}
}
