package negotiate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/provider"
)

// ChatFailureMessage is appended to the transcript when a chat call fails.
const ChatFailureMessage = "I'm having trouble connecting right now. Please try again."

const emptyReplyText = "I'm sorry, I couldn't process that request."

// Coach answers negotiation questions in the context of an analysis. History
// is replayed on every call, so the Coach itself is stateless.
type Coach struct {
	provider provider.ChatProvider
	logger   *zap.Logger
}

// NewCoach creates a Coach.
func NewCoach(p provider.ChatProvider, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coach{provider: p, logger: logger.Named("coach")}
}

// Converse sends message after history and returns the decoded reply.
func (c *Coach) Converse(ctx context.Context, history []contract.Turn, message, contractContext string) (contract.Reply, error) {
	const op = "chat"

	if strings.TrimSpace(message) == "" {
		return contract.Reply{}, fault.New(fault.KindInputMissing, op, "type a question first")
	}

	start := time.Now()
	raw, err := c.provider.SendChat(ctx, provider.ChatRequest{
		SystemInstruction: ChatInstruction(contractContext),
		History:           history,
		Message:           message,
	})
	if err != nil {
		c.logger.Warn("chat call failed",
			zap.Int("history", len(history)),
			zap.String("kind", string(fault.KindOf(err))))
		return contract.Reply{}, classifyProviderError(op, err)
	}

	reply := DecodeReply(raw)
	c.logger.Debug("chat reply",
		zap.Int("history", len(history)),
		zap.Int("actions", len(reply.Actions)),
		zap.Duration("elapsed", time.Since(start)))
	return reply, nil
}

// DecodeReply parses a {text, actions} reply. Anything that is not such an
// object is returned verbatim as text without actions. Actions with an
// unknown kind or no label are dropped, and an actions value that is not an
// array drops them all.
func DecodeReply(raw string) contract.Reply {
	body := strings.TrimSpace(raw)
	if body == "" {
		return contract.Reply{Text: emptyReplyText}
	}

	var doc struct {
		Text    *string         `json:"text"`
		Actions json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil || doc.Text == nil || strings.TrimSpace(*doc.Text) == "" {
		return contract.Reply{Text: raw}
	}

	reply := contract.Reply{Text: *doc.Text}
	var actions []json.RawMessage
	if len(doc.Actions) > 0 {
		// A malformed actions value costs the actions, not the text.
		if err := json.Unmarshal(doc.Actions, &actions); err != nil {
			return reply
		}
	}
	for _, rawAction := range actions {
		var action contract.ChatAction
		if err := json.Unmarshal(rawAction, &action); err != nil {
			continue
		}
		if !action.Type.Valid() || strings.TrimSpace(action.Label) == "" {
			continue
		}
		reply.Actions = append(reply.Actions, action)
	}
	return reply
}
