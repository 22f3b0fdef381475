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

package main

import (
	"unsafe"

	"github.com/c8vm/CHIP-8/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	// Screen is the streaming texture the core's palette output lands in.
	Screen *sdl.Texture

	// Frame is the RGBA staging buffer filled by the core each redraw.
	Frame []byte
)

// initScreen creates the render texture for the CHIP-8 video memory.
func initScreen() {
	var err error

	// one texel per video byte; RGBA byte order
	Screen, err = Renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_ABGR8888),
		sdl.TEXTUREACCESS_STREAMING,
		chip8.W,
		chip8.H,
	)
	if err != nil {
		panic(err)
	}

	Frame = make([]byte, chip8.W*chip8.H*4)
}

// refreshScreen uploads the palette-mapped video memory.
func refreshScreen() {
	VM.Render(Frame)

	if err := Screen.Update(nil, unsafe.Pointer(&Frame[0]), chip8.W*4); err != nil {
		panic(err)
	}
}

// copyScreen stretches the screen texture into the window. Lo-res is
// already doubled in video memory, so the full texture always shows.
func copyScreen() {
	w, h, err := Renderer.GetOutputSize()
	if err != nil {
		panic(err)
	}

	Renderer.Copy(Screen, nil, &sdl.Rect{W: w, H: h})
}
