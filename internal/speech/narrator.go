package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
)

var _ domain.Narrator = (*Narrator)(nil)

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Sink plays WAV audio, blocking until done.
type Sink interface {
	Play(ctx context.Context, wav []byte) error
	Stop()
}

// Narrator speaks one line at a time. Starting a new line interrupts the
// one that is playing.
type Narrator struct {
	tts   Synthesizer
	sink  Sink
	cache *AudioCache
	log   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewNarrator wires a synthesizer to an audio sink. cache may be nil.
func NewNarrator(tts Synthesizer, sink Sink, cache *AudioCache, log *logger.Logger) *Narrator {
	return &Narrator{tts: tts, sink: sink, cache: cache, log: log}
}

// Speak synthesizes text and plays it, blocking until playback ends. A
// Speak that is superseded by a later call or by Stop returns nil.
func (n *Narrator) Speak(ctx context.Context, text string) error {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.gen++
	gen := n.gen
	n.mu.Unlock()
	defer n.release(gen, cancel)

	n.sink.Stop()

	audio, err := n.audio(ctx, text)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("narration: %w", err)
	}

	n.log.Debug("narrator: speaking %d chars", len(text))
	if err := n.sink.Play(ctx, audio); err != nil && ctx.Err() == nil {
		return fmt.Errorf("narration: %w", err)
	}
	return nil
}

// Prefetch synthesizes text into the cache without playing it.
func (n *Narrator) Prefetch(ctx context.Context, text string) {
	if n.cache == nil {
		return
	}
	if _, ok := n.cache.Get(text); ok {
		return
	}
	go func() {
		if _, err := n.audio(ctx, text); err != nil {
			n.log.Debug("narrator: prefetch failed: %v", err)
		}
	}()
}

// Stop interrupts the current line.
func (n *Narrator) Stop() {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.mu.Unlock()
	n.sink.Stop()
}

func (n *Narrator) audio(ctx context.Context, text string) ([]byte, error) {
	if n.cache != nil {
		if data, ok := n.cache.Get(text); ok {
			return data, nil
		}
	}
	data, err := n.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if n.cache != nil {
		n.cache.Put(text, data)
	}
	return data, nil
}

func (n *Narrator) release(gen uint64, cancel context.CancelFunc) {
	cancel()
	n.mu.Lock()
	if n.gen == gen {
		n.cancel = nil
	}
	n.mu.Unlock()
}

// Config selects and configures narration.
type Config struct {
	Key      string
	Region   string
	Voice    string
	CacheDir string
}

// FromConfig returns an Azure-backed narrator, or NoOp when credentials
// are missing or no audio device is available.
func FromConfig(cfg Config, log *logger.Logger) domain.Narrator {
	if cfg.Key == "" || cfg.Region == "" {
		log.Info("speech: no credentials, narration disabled")
		return NewNoOp(log)
	}
	player, err := NewPlayer(log)
	if err != nil {
		log.Warn("speech: audio unavailable, narration disabled: %v", err)
		return NewNoOp(log)
	}
	tts := NewAzureClient(cfg.Key, cfg.Region, log, WithVoice(cfg.Voice))
	log.Info("speech: narrating with voice %s", tts.Voice())
	return NewNarrator(tts, player, NewAudioCache(tts.Voice(), cfg.CacheDir, log), log)
}
