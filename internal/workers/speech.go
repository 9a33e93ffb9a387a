package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
)

// SpeechWorker reads negotiation scripts aloud.
type SpeechWorker struct {
	speaker Speaker
}

func NewSpeechWorker(speaker Speaker) *SpeechWorker {
	return &SpeechWorker{speaker: speaker}
}

// SpeechResult carries a WAV file as base64.
type SpeechResult struct {
	MIMEType   string `json:"mime_type"`
	Data       string `json:"data"`
	SampleRate int    `json:"sample_rate"`
	DurationMS int64  `json:"duration_ms"`
}

func (w *SpeechWorker) GetTools() []ToolDef {
	return []ToolDef{
		{Name: "synthesize", Description: "Read a negotiation script aloud; returns a base64 WAV file"},
	}
}

func (w *SpeechWorker) Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error) {
	switch toolName("speech", name) {
	case "synthesize":
		return w.synthesize(ctx, input)
	default:
		return nil, unknownTool("speech", name)
	}
}

func (w *SpeechWorker) synthesize(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Script string `json:"script"`
	}
	if err := decode("synthesize", input, &req); err != nil {
		return nil, err
	}
	buf, err := w.speaker.Synthesize(ctx, req.Script)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SpeechResult{
		MIMEType:   "audio/wav",
		Data:       base64.StdEncoding.EncodeToString(buf.WAV()),
		SampleRate: buf.SampleRate,
		DurationMS: buf.Duration().Milliseconds(),
	})
}
