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
	"fmt"
	"os"
)

// FlagsFname is the default file backing the persistent flag
// registers: 16 raw bytes, no header.
const FlagsFname = "flags.bin"

// flagCount clamps how many registers FX75/FX85 touch. XO-CHIP
// persists all 16; the HP-48 systems only had 8 RPL flags.
func (vm *CHIP_8) flagCount(x uint16) uint16 {
	if vm.Sys != XOCHIP && x > 7 {
		x = 7
	}

	return x + 1
}

// Store v0..vx in the persistent flags file. Bytes beyond x keep
// whatever the file already held. A write failure aborts emulation;
// the opcode is mandatory on every system but the original CHIP-8,
// where it is a no-op.
func (vm *CHIP_8) storeFlags(x uint16) error {
	if vm.Sys == CHIP8 {
		return nil
	}

	buf := make([]byte, 16)
	if data, err := os.ReadFile(vm.FlagsPath); err == nil {
		copy(buf, data)
	}

	n := vm.flagCount(x)
	copy(buf[:n], vm.V[:n])

	if err := os.WriteFile(vm.FlagsPath, buf, 0644); err != nil {
		return fmt.Errorf("saving flags: %w", err)
	}

	return nil
}

// Read v0..vx back from the persistent flags file. A missing file is
// created zeroed; an existing but short file is a hard error.
func (vm *CHIP_8) readFlags(x uint16) error {
	if vm.Sys == CHIP8 {
		return nil
	}

	n := vm.flagCount(x)

	data, err := os.ReadFile(vm.FlagsPath)
	if os.IsNotExist(err) {
		data = make([]byte, 16)

		if err := os.WriteFile(vm.FlagsPath, data, 0644); err != nil {
			return fmt.Errorf("creating flags: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("reading flags: %w", err)
	} else if len(data) < int(n) {
		return fmt.Errorf("flags file truncated: %d bytes", len(data))
	}

	copy(vm.V[:n], data[:n])

	return nil
}
