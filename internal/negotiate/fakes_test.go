package negotiate

import (
	"context"
	"sync"

	"github.com/ericksa/lexinegotiate/internal/provider"
)

type fakeAnalysis struct {
	mu    sync.Mutex
	calls []provider.AnalysisRequest
	raw   string
	err   error
}

func (f *fakeAnalysis) GenerateAnalysis(_ context.Context, req provider.AnalysisRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.raw, f.err
}

func (f *fakeAnalysis) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeChat struct {
	mu    sync.Mutex
	calls []provider.ChatRequest
	raw   string
	err   error
}

func (f *fakeChat) SendChat(_ context.Context, req provider.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.raw, f.err
}

type fakeSpeech struct {
	mu    sync.Mutex
	calls []provider.SpeechRequest
	audio *provider.Audio
	err   error
}

func (f *fakeSpeech) GenerateSpeech(_ context.Context, req provider.SpeechRequest) (*provider.Audio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.audio, f.err
}
