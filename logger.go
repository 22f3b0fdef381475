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
	"fmt"
	"strings"
)

// Logger collects driver diagnostics. Lines are echoed to stdout and
// kept around so a debug panel can scroll back through them.
type Logger struct {
	// buf contains each line of logged text.
	buf []string
}

// NewLog creates a new Logger.
func NewLog() *Logger {
	return &Logger{
		buf: make([]string, 0, 100),
	}
}

// Log outputs a new line to the log.
func (log *Logger) Log(s ...string) {
	line := strings.Join(s, " ")

	log.buf = append(log.buf, line)
	fmt.Println(line)
}

// Window returns the last n lines logged.
func (log *Logger) Window(n int) []string {
	if n > len(log.buf) {
		n = len(log.buf)
	}

	return log.buf[len(log.buf)-n:]
}
