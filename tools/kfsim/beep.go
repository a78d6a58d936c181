package main

import (
	"log"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	beepSampleRate = beep.SampleRate(44100)
	postBeepFreq   = 1000
	postBeepLength = 120 * time.Millisecond
)

// squareTone emulates the PC speaker driven by a PIT channel 2 square wave.
type squareTone struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func newSquareTone(sr beep.SampleRate, freq float64) *squareTone {
	return &squareTone{sr: sr, freq: freq}
}

func (g *squareTone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		phase := math.Mod(float64(g.pos)*g.freq/float64(g.sr), 1)
		sample := 0.15
		if phase >= 0.5 {
			sample = -sample
		}

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *squareTone) Err() error {
	return nil
}

// postBeep returns the single short beep a BIOS emits after a successful
// power-on self test.
func postBeep() beep.Streamer {
	return beep.Take(beepSampleRate.N(postBeepLength), newSquareTone(beepSampleRate, postBeepFreq))
}

// speakerBeeper plays the POST beep through the host audio device.
type speakerBeeper struct {
	ready bool
}

// newSpeakerBeeper opens the audio device. Audio is optional: when the
// device cannot be opened the beeper stays silent.
func newSpeakerBeeper() *speakerBeeper {
	if err := speaker.Init(beepSampleRate, beepSampleRate.N(50*time.Millisecond)); err != nil {
		log.Printf("kfsim: audio disabled: %v", err)
		return &speakerBeeper{}
	}
	return &speakerBeeper{ready: true}
}

func (b *speakerBeeper) Beep() {
	if b.ready {
		speaker.Play(postBeep())
	}
}

func (b *speakerBeeper) Close() {
	if b.ready {
		speaker.Close()
	}
}
