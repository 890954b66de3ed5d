package shell

import (
	"io"

	"github.com/ebitengine/oto/v3"

	"github.com/rolfmatthias/gbacore/internal/audio"
)

const sampleRate = 32768

// ringReader adapts an audio.RingBuffer to io.Reader so it can feed an oto
// player directly; oto pulls on its own goroutine, the same SPSC contract
// the ring buffer is built for.
type ringReader struct {
	ring *audio.RingBuffer
}

func (r *ringReader) Read(p []byte) (int, error) {
	samples := make([]int16, len(p)/2)
	r.ring.Read(samples)
	for i, s := range samples {
		p[i*2] = byte(s)
		p[i*2+1] = byte(s >> 8)
	}
	return len(samples) * 2, nil
}

// AudioPlayer drains a ring buffer through oto. No APU is wired in yet, so
// the ring sits unfed and the player outputs silence until a sample
// producer appears.
type AudioPlayer struct {
	ring    *audio.RingBuffer
	ctx     *oto.Context
	player  *oto.Player
}

func NewAudioPlayer() (*AudioPlayer, error) {
	ring := audio.NewRingBuffer(audio.DefaultCapacitySamples)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	player := ctx.NewPlayer(&ringReader{ring: ring})
	return &AudioPlayer{ring: ring, ctx: ctx, player: player}, nil
}

func (a *AudioPlayer) Ring() *audio.RingBuffer { return a.ring }

func (a *AudioPlayer) Start() {
	a.player.Play()
}

func (a *AudioPlayer) Stop() {
	a.player.Pause()
}

var _ io.Reader = (*ringReader)(nil)
