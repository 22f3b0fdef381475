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
	"math"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	// sampleRate is the host playback rate.
	sampleRate = 44100

	// frameSamples is one 60 Hz frame worth of samples.
	frameSamples = sampleRate / 60
)

var (
	// Device is the opened audio device.
	Device sdl.AudioDeviceID

	// phase is the playback position within the 128-bit pattern.
	phase float64
)

// initAudio opens an audio device for the CHIP-8 buzzer.
func initAudio() {
	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  1024,
	}

	var err error
	if Device, err = sdl.OpenAudioDevice("", false, spec, nil, 0); err != nil {
		panic(err)
	}

	// start draining the queue immediately
	sdl.PauseAudioDevice(Device, false)
}

// queueAudio pushes one frame of buzzer samples while the sound timer
// runs. The XO-CHIP pattern buffer is played as a 128-bit loop at the
// rate selected by the pitch register; classic ROMs never touch either
// and get the default square-ish tone.
func queueAudio() {
	if VM.Sound == 0 {
		phase = 0
		return
	}

	// bits per second for the current pitch
	rate := 4000 * math.Pow(2, (float64(VM.Pitch)-64)/48)
	step := rate / sampleRate

	// an empty pattern buffer plays a plain square wave
	pattern := VM.Audio
	if pattern == [16]byte{} {
		for i := range pattern {
			pattern[i] = 0xF0
		}
	}

	buf := make([]byte, frameSamples)
	for i := range buf {
		bit := int(phase) & 127

		if pattern[bit>>3]&(0x80>>uint(bit&7)) != 0 {
			buf[i] = 0xC0
		} else {
			buf[i] = 0x40
		}

		phase += step
	}

	sdl.QueueAudio(Device, buf)
}
