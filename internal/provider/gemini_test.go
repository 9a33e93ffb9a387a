package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
)

// fakeGemini records the last request body and answers with a canned payload.
type fakeGemini struct {
	mu     sync.Mutex
	path   string
	body   map[string]any
	status int
	reply  string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.path = r.URL.Path
	f.body = nil
	_ = json.Unmarshal(raw, &f.body)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply)
}

func (f *fakeGemini) requestBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.body
}

func newTestGemini(t *testing.T, fake *fakeGemini) *Gemini {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	g, err := NewGemini(context.Background(), GeminiOptions{
		APIKey:         "test-key",
		BaseURL:        srv.URL + "/",
		AnalysisModel:  "analysis-model",
		ChatModel:      "chat-model",
		SpeechModel:    "speech-model",
		ThinkingBudget: 1024,
		HTTPClient:     srv.Client(),
	}, nil)
	require.NoError(t, err)
	return g
}

func textReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": "STOP",
		}},
	})
	return string(b)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiOptions{}, nil)
	assert.Error(t, err)
}

func TestGeminiGenerateAnalysis(t *testing.T) {
	fake := &fakeGemini{reply: textReply(`{"riskScore":10}`)}
	g := newTestGemini(t, fake)

	got, err := g.GenerateAnalysis(context.Background(), AnalysisRequest{
		Parts: []Part{
			{InlineData: &Blob{MIMEType: "image/png", Data: []byte("png")}},
			TextPart("analyze"),
		},
		Schema: contract.AnalysisSchema(),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"riskScore":10}`, got)
	assert.Contains(t, fake.path, "analysis-model:generateContent")

	body := fake.requestBody()
	require.NotNil(t, body)
	cfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing: %v", body)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.NotNil(t, cfg["responseSchema"])

	contents := body["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), inline["data"])
	assert.Equal(t, "analyze", parts[1].(map[string]any)["text"])
}

func TestGeminiSendChatReplaysHistory(t *testing.T) {
	fake := &fakeGemini{reply: textReply(`{"text":"hi","actions":[]}`)}
	g := newTestGemini(t, fake)

	got, err := g.SendChat(context.Background(), ChatRequest{
		SystemInstruction: "be brief",
		History: []contract.Turn{
			{Role: contract.RoleUser, Text: "first"},
			{Role: contract.RoleModel, Text: "answer"},
		},
		Message: "second",
	})
	require.NoError(t, err)
	assert.Contains(t, got, `"hi"`)

	contents := fake.requestBody()["contents"].([]any)
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].(map[string]any)["role"])
	last := contents[2].(map[string]any)
	assert.Equal(t, "user", last["role"])
	assert.Equal(t, "second", last["parts"].([]any)[0].(map[string]any)["text"])
}

func TestGeminiGenerateSpeech(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xC0}
	reply, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{
				"inlineData": map[string]any{"mimeType": "audio/L16;rate=24000", "data": base64.StdEncoding.EncodeToString(pcm)},
			}}},
		}},
	})
	fake := &fakeGemini{reply: string(reply)}
	g := newTestGemini(t, fake)

	audio, err := g.GenerateSpeech(context.Background(), SpeechRequest{Text: "read this", Voice: "Kore"})
	require.NoError(t, err)
	assert.Equal(t, pcm, audio.Data)

	raw, _ := json.Marshal(fake.requestBody())
	assert.Contains(t, string(raw), "Kore")
	assert.Contains(t, string(raw), "AUDIO")
}

func TestGeminiGenerateSpeechWithoutAudio(t *testing.T) {
	fake := &fakeGemini{reply: textReply("no audio here")}
	g := newTestGemini(t, fake)

	audio, err := g.GenerateSpeech(context.Background(), SpeechRequest{Text: "x", Voice: "Kore"})
	require.NoError(t, err)
	assert.Nil(t, audio.Data)
}

func TestGeminiClassifiesFailures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		fake := &fakeGemini{
			status: http.StatusServiceUnavailable,
			reply:  `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`,
		}
		g := newTestGemini(t, fake)

		_, err := g.GenerateAnalysis(context.Background(), AnalysisRequest{Parts: []Part{TextPart("x")}})
		require.Error(t, err)
		assert.ErrorIs(t, err, fault.ErrTransportFailure)

		var fe *fault.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
	})

	t.Run("blocked prompt", func(t *testing.T) {
		fake := &fakeGemini{reply: `{"promptFeedback":{"blockReason":"SAFETY"}}`}
		g := newTestGemini(t, fake)

		_, err := g.GenerateAnalysis(context.Background(), AnalysisRequest{Parts: []Part{TextPart("x")}})
		assert.ErrorIs(t, err, fault.ErrContentRefusal)
	})

	t.Run("safety finish reason", func(t *testing.T) {
		fake := &fakeGemini{reply: `{"candidates":[{"finishReason":"PROHIBITED_CONTENT"}]}`}
		g := newTestGemini(t, fake)

		_, err := g.SendChat(context.Background(), ChatRequest{Message: "x"})
		assert.ErrorIs(t, err, fault.ErrContentRefusal)
	})

	t.Run("cancelled context", func(t *testing.T) {
		g := newTestGemini(t, &fakeGemini{reply: textReply("{}")})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := g.GenerateAnalysis(ctx, AnalysisRequest{Parts: []Part{TextPart("x")}})
		assert.ErrorIs(t, err, fault.ErrTransportFailure)
	})
}

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(contract.AnalysisSchema())

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"riskScore", "summary", "overallRecommendation", "clauses"}, s.Required)
	assert.Equal(t, "riskScore", s.PropertyOrdering[0])

	risk := s.Properties["riskScore"]
	assert.Equal(t, genai.TypeInteger, risk.Type)
	require.NotNil(t, risk.Maximum)
	assert.Equal(t, 100.0, *risk.Maximum)

	clause := s.Properties["clauses"].Items
	require.NotNil(t, clause)
	level := clause.Properties["riskLevel"]
	assert.Equal(t, "enum", level.Format)
	assert.Equal(t, []string{"HIGH", "MEDIUM", "LOW"}, level.Enum)
	assert.NotContains(t, clause.Required, "detailedFinancials")
	assert.Equal(t, genai.TypeObject, clause.Properties["detailedFinancials"].Type)

	assert.Nil(t, toGenaiSchema(nil))
}
