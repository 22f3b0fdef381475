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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/c8vm/CHIP-8/chip8"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	// VM is the CHIP-8 virtual machine.
	VM *chip8.CHIP_8

	// Window is the global SDL window.
	Window *sdl.Window

	// Renderer is the global SDL renderer.
	Renderer *sdl.Renderer

	// Debug is the output Logger.
	Debug *Logger

	// Paused is true if emulation is paused (single stepping).
	Paused bool

	// File is the currently opened ROM.
	File string

	// UseJIT runs compiled blocks instead of single stepping.
	UseJIT bool

	// InsPerFrame is the instruction budget per 60 Hz frame.
	InsPerFrame int

	// SysName is the -sys flag value.
	SysName string

	// Systems maps the -sys flag to a core system.
	Systems = map[string]chip8.System{
		"chip8":  chip8.CHIP8,
		"lschip": chip8.LSCHIP,
		"mschip": chip8.MSCHIP,
		"xochip": chip8.XOCHIP,
	}
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		panic(err)
	}

	// create a new debug log
	Debug = NewLog()

	// parse the command line
	flag.StringVar(&SysName, "sys", "xochip", "System to emulate: chip8, lschip, mschip, xochip.")
	flag.BoolVar(&UseJIT, "jit", true, "Execute compiled blocks instead of interpreting.")
	flag.IntVar(&InsPerFrame, "ipf", 100000, "Instruction budget per frame.")
	flag.Parse()

	sys, ok := Systems[SysName]
	if !ok {
		fmt.Println("Unknown system:", SysName)
		os.Exit(1)
	}

	// create the new VM
	VM = chip8.New(sys)
	defer VM.Close()

	// load the ROM from the command line or ask for one
	if file := flag.Arg(0); file != "" {
		load(file)
	} else {
		open()
	}

	// create the main window, renderer, and screen or panic
	createWindow()
	initScreen()
	initAudio()

	// refresh rate
	video := time.NewTicker(time.Second / 60)

	// notify that the main loop has started
	Debug.Log("Starting", filepath.Base(File))

	// loop until window closed or user quit
	for processEvents() {
		<-video.C

		if !Paused {
			runFrame()
		}

		redraw()
	}
}

// createWindow creates the SDL window and renderer or panics.
func createWindow() {
	var err error

	// create the window and renderer
	Window, Renderer, err = sdl.CreateWindowAndRenderer(chip8.W*6, chip8.H*6, sdl.WINDOW_OPENGL)
	if err != nil {
		panic(err)
	}

	// set the title
	Window.SetTitle("CHIP-8")
}

// runFrame advances emulation by one 60 Hz frame: tick the timers,
// feed the buzzer, then burn the instruction budget. A draw that asks
// for the frame boundary or a halt waiting on the keypad yields early.
func runFrame() {
	VM.TickTimers()
	queueAudio()

	// the previous frame boundary was delivered
	VM.WaitVBlank = false

	for cycles := 0; cycles < InsPerFrame && !VM.WaitVBlank; {
		var n int
		var err error

		if UseJIT {
			n, err = VM.RunBlock()
		} else {
			n, err = 1, VM.Step()
		}

		cycles += n

		if err != nil {
			switch err.(type) {
			case chip8.Exit:
				Debug.Log(err.Error())
			default:
				Debug.Log("Emulation stopped:", err.Error())
			}

			// break the emulation
			Paused = true
			return
		}

		// poll the keypad again next frame
		if VM.Halted {
			break
		}
	}
}

// open shows the open file dialog to pick a ROM.
func open() {
	dlg := dialog.File().Title("Load CHIP-8 ROM")

	// types of files to load
	dlg.Filter("All Files", "*")
	dlg.Filter("ROMs", "rom", "ch8", "xo8")

	// try and load it
	if file, err := dlg.Load(); err == nil {
		load(file)
	} else {
		os.Exit(0)
	}
}

// load a ROM file into the VM.
func load(file string) {
	program, err := os.ReadFile(file)
	if err != nil {
		Debug.Log(err.Error())
		return
	}

	if err := VM.LoadROM(program); err != nil {
		Debug.Log(err.Error())
		return
	}

	// save the loaded file for reloads
	File = file

	Debug.Log("Loaded", filepath.Base(file), "-", fmt.Sprint(VM.Size), "bytes")
}

// redraw the window with the current video memory.
func redraw() {
	refreshScreen()

	// clear the renderer
	Renderer.SetDrawColor(32, 42, 53, 255)
	Renderer.Clear()

	// stretch the screen into the window
	copyScreen()

	// show it
	Renderer.Present()
}
