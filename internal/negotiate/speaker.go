package negotiate

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/provider"
)

// DefaultVoice is the prebuilt voice used for negotiation scripts.
const DefaultVoice = "Kore"

// Speaker turns a negotiation script into playable audio.
type Speaker struct {
	provider provider.SpeechProvider
	voice    string
	logger   *zap.Logger
}

// NewSpeaker creates a Speaker. An empty voice selects DefaultVoice.
func NewSpeaker(p provider.SpeechProvider, voice string, logger *zap.Logger) *Speaker {
	if voice == "" {
		voice = DefaultVoice
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Speaker{provider: p, voice: voice, logger: logger.Named("speaker")}
}

// Voice returns the configured voice name.
func (s *Speaker) Voice() string { return s.voice }

// Synthesize reads the script aloud and returns the decoded audio.
func (s *Speaker) Synthesize(ctx context.Context, script string) (*AudioBuffer, error) {
	const op = "speech"

	if strings.TrimSpace(script) == "" {
		return nil, fault.New(fault.KindInputMissing, op, "there is no negotiation script to read")
	}

	start := time.Now()
	audio, err := s.provider.GenerateSpeech(ctx, provider.SpeechRequest{
		Text:  SpeechInstructionPrefix + script,
		Voice: s.voice,
	})
	if err != nil {
		return nil, classifyProviderError(op, err)
	}
	if audio == nil || len(audio.Data) < 2 {
		return nil, fault.New(fault.KindNoAudioData, op, "no audio data received")
	}

	buf := &AudioBuffer{
		SampleRate: SpeechSampleRate,
		Channels:   SpeechChannels,
		Samples:    DecodePCM16(audio.Data),
	}
	s.logger.Debug("speech synthesized",
		zap.String("voice", s.voice),
		zap.Duration("audio", buf.Duration()),
		zap.Duration("elapsed", time.Since(start)))
	return buf, nil
}
