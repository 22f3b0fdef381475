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

//go:build linux || darwin

package chip8

import "golang.org/x/sys/unix"

// allocExec copies host code into a fresh executable mapping. The
// mapping is written first and only then flipped to read-execute, so
// it is never writable and executable at the same time.
func allocExec(code []byte) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	copy(buf, code)

	if err := unix.Mprotect(buf, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(buf)
		return nil, err
	}

	return buf, nil
}

// freeExec returns an executable mapping to the OS.
func freeExec(buf []byte) {
	unix.Munmap(buf)
}
