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
	"github.com/veandco/go-sdl2/sdl"
)

var (
	// KeyMap of modern keyboard keys to CHIP-8 keys.
	KeyMap = map[sdl.Scancode]uint{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

// processEvents from SDL and map keys to the CHIP-8 VM.
func processEvents() bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.DropEvent:
			load(ev.File)
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYUP {
				if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
					VM.ReleaseKey(key)
				}
			} else if ev.Repeat == 0 {
				if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
					VM.PressKey(key)
				} else {
					switch ev.Keysym.Scancode {
					case sdl.SCANCODE_ESCAPE:
						return false
					case sdl.SCANCODE_BACKSPACE:
						Debug.Log("Rebooting")
						VM.Reset()
					case sdl.SCANCODE_F3:
						open()
					case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
						Paused = !Paused
					case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
						if Paused {
							step()
						}
					}
				}
			}
		}
	}

	return true
}

// step a single instruction while paused.
func step() {
	if err := VM.Step(); err != nil {
		Debug.Log(err.Error())
	}

	Debug.Log(VM.Disassemble(VM.PC))
}
