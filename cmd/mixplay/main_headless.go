//go:build headless

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	mixer "github.com/tphakala/go-tracker-mixer"
	"github.com/tphakala/go-tracker-mixer/internal/song"
)

const readBytes = 4096

// Without an audio device the song is pulled through the same stream as
// fast as possible and discarded, which doubles as a throughput check.
func main() {
	loops := flag.Int("loops", 1, "Number of times to play the pattern")
	flag.Parse()

	s, err := song.New(song.Demo(), song.DemoInstruments(nil), song.DefaultBPM, song.DefaultSpeed)
	if err != nil {
		log.Fatal(err)
	}
	m, err := mixer.NewFloat32(s.Voices(), mixer.RateCD, 1024)
	if err != nil {
		log.Fatal(err)
	}
	m.SetPlayer(s)

	start := time.Now()
	str := newStream(m)
	p := make([]byte, readBytes)
	for {
		if s.Loops() >= *loops {
			m.Stop()
		}
		if _, err := str.Read(p); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			log.Fatal(err)
		}
	}

	rendered := float64(m.Time()) / mixer.RateCD
	fmt.Printf("Rendered %.1fs of audio in %v (headless)\n", rendered, time.Since(start))
}
