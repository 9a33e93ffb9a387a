// Package provider abstracts the generative model behind three narrow
// interfaces so orchestration logic can be exercised without the network.
package provider

import (
	"context"

	"github.com/ericksa/lexinegotiate/internal/contract"
)

// Blob is inline binary content.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one element of a multimodal request: either text or inline data.
type Part struct {
	Text       string
	InlineData *Blob
}

// TextPart builds a text part.
func TextPart(text string) Part { return Part{Text: text} }

// AnalysisRequest is a single structured-output call.
type AnalysisRequest struct {
	Parts  []Part
	Schema *contract.Schema
}

// HasInlineData reports whether any part carries binary content.
func (r AnalysisRequest) HasInlineData() bool {
	for _, p := range r.Parts {
		if p.InlineData != nil {
			return true
		}
	}
	return false
}

// ChatRequest is one conversational turn. History is replayed in full on
// every call.
type ChatRequest struct {
	SystemInstruction string
	History           []contract.Turn
	Message           string
}

// SpeechRequest asks for the text to be read aloud.
type SpeechRequest struct {
	Text  string
	Voice string
}

// Audio is the raw payload returned by a speech call. Data is nil when the
// model produced no audio.
type Audio struct {
	MIMEType string
	Data     []byte
}

// AnalysisProvider returns the raw text of a schema-constrained response.
type AnalysisProvider interface {
	GenerateAnalysis(ctx context.Context, req AnalysisRequest) (string, error)
}

// ChatProvider returns the raw text of a chat reply.
type ChatProvider interface {
	SendChat(ctx context.Context, req ChatRequest) (string, error)
}

// SpeechProvider returns inline audio for a script.
type SpeechProvider interface {
	GenerateSpeech(ctx context.Context, req SpeechRequest) (*Audio, error)
}
