// Package coordinator owns the session store and dispatches user intents to
// the analysis, chat and speech orchestrators.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/audit"
	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
	"github.com/ericksa/lexinegotiate/internal/session"
)

// EmailDraftNotice answers an email action without calling the model.
const EmailDraftNotice = "I've generated a specific email draft based on this advice. You can find it in the 'Email Generator' tab of the relevant clause!"

// Analyzer runs one analysis.
type Analyzer interface {
	Analyze(ctx context.Context, in negotiate.Input) (*contract.ContractAnalysis, error)
}

// Coach answers one chat turn.
type Coach interface {
	Converse(ctx context.Context, history []contract.Turn, message, contractContext string) (contract.Reply, error)
}

// Speaker reads a script aloud.
type Speaker interface {
	Synthesize(ctx context.Context, script string) (*negotiate.AudioBuffer, error)
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	store    *session.Store
	analyzer Analyzer
	coach    Coach
	speaker  Speaker
	auditor  *audit.Auditor
	logger   *zap.Logger
}

// New creates a Coordinator. auditor may be nil.
func New(store *session.Store, analyzer Analyzer, coach Coach, speaker Speaker, auditor *audit.Auditor, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:    store,
		analyzer: analyzer,
		coach:    coach,
		speaker:  speaker,
		auditor:  auditor,
		logger:   logger.Named("coordinator"),
	}
}

// Store exposes the session store, e.g. for the janitor.
func (c *Coordinator) Store() *session.Store { return c.store }

func (c *Coordinator) record(ctx context.Context, op, sessionID, detail string, start time.Time, err error) {
	outcome := audit.OutcomeOK
	if err != nil {
		outcome = string(fault.KindOf(err))
	}
	c.auditor.Log(context.WithoutCancel(ctx), audit.Entry{
		Operation: op,
		Session:   sessionID,
		Outcome:   outcome,
		Detail:    detail,
		Duration:  time.Since(start),
	})
}

// CreateSession starts an empty session.
func (c *Coordinator) CreateSession() session.State {
	return c.store.Create().Snapshot()
}

// State returns the current state of a session.
func (c *Coordinator) State(id string) (session.State, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return session.State{}, err
	}
	return sess.Snapshot(), nil
}

// DeleteSession discards a session and everything it holds.
func (c *Coordinator) DeleteSession(id string) error {
	if _, err := c.store.Get(id); err != nil {
		return err
	}
	c.store.Delete(id)
	return nil
}

// SetInput stores pasted contract text.
func (c *Coordinator) SetInput(id, text string) (session.State, error) {
	return c.mutate(id, func(s *session.Session) error { return s.SetInput(text) })
}

// Upload stores an image or PDF as a data URI preview.
func (c *Coordinator) Upload(id, name, mimeType string, data []byte) (session.State, error) {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if !AcceptedUpload(mimeType) {
		return session.State{}, &fault.Error{
			Kind:    fault.KindMalformedImage,
			Op:      "upload",
			Message: fmt.Sprintf("unsupported file type %q: upload an image or a PDF", mimeType),
			Image:   true,
		}
	}
	if len(data) == 0 {
		return session.State{}, &fault.Error{Kind: fault.KindMalformedImage, Op: "upload", Message: "the uploaded file is empty", Image: true}
	}
	upload := session.Upload{Name: name, MIMEType: mimeType, DataURI: negotiate.EncodeDataURI(mimeType, data)}
	return c.mutate(id, func(s *session.Session) error { return s.SetUpload(upload) })
}

// AcceptedUpload reports whether a file of this type can be analyzed.
func AcceptedUpload(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

// ClearUpload removes the upload preview.
func (c *Coordinator) ClearUpload(id string) (session.State, error) {
	return c.mutate(id, func(s *session.Session) error { return s.ClearUpload() })
}

// Reset returns a session to its initial state.
func (c *Coordinator) Reset(id string) (session.State, error) {
	return c.mutate(id, func(s *session.Session) error { return s.Reset() })
}

// ClearChat empties the transcript.
func (c *Coordinator) ClearChat(id string) (session.State, error) {
	return c.mutate(id, func(s *session.Session) error { return s.ClearChat() })
}

func (c *Coordinator) mutate(id string, fn func(*session.Session) error) (session.State, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return session.State{}, err
	}
	if err := fn(sess); err != nil {
		return session.State{}, err
	}
	return sess.Snapshot(), nil
}

// Analyze runs the analysis for the session's current input. The returned
// state reflects the outcome; err is the analysis failure, if any.
func (c *Coordinator) Analyze(ctx context.Context, id string) (session.State, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return session.State{}, err
	}
	in, ticket, err := sess.BeginAnalysis()
	if err != nil {
		return session.State{}, err
	}

	start := time.Now()
	analysis, err := c.analyzer.Analyze(ctx, in)
	sess.FinishAnalysis(ticket, analysis, err)

	detail := fmt.Sprintf("image=%t", in.Image != "")
	if analysis != nil {
		detail += fmt.Sprintf(" clauses=%d risk=%d", len(analysis.Clauses), analysis.RiskScore)
	}
	c.record(ctx, "analyze", id, detail, start, err)
	return sess.Snapshot(), err
}

// Analysis returns the session's current analysis.
func (c *Coordinator) Analysis(id string) (*contract.ContractAnalysis, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Analysis()
}

// Chat sends a message to the coach and returns the model message appended
// to the transcript. On failure the appended message is the
// connection-trouble notice and err is set. A reply that arrives after a reset
// or a new analysis is discarded with an invalid-state error.
func (c *Coordinator) Chat(ctx context.Context, id, message string) (contract.ChatMessage, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return contract.ChatMessage{}, err
	}
	turn, err := sess.BeginChat(message)
	if err != nil {
		return contract.ChatMessage{}, err
	}

	start := time.Now()
	reply, err := c.coach.Converse(ctx, turn.History, message, turn.Context)
	msg, current := sess.FinishChat(turn.Ticket, reply, err)
	if err != nil {
		c.logger.Warn("chat failed", zap.String("session", id), zap.Error(err))
	}
	if !current {
		// The transcript this reply belonged to is gone.
		err = fault.New(fault.KindInvalidState, "chat", "the session was reset before the coach answered")
	}
	c.record(ctx, "chat", id, fmt.Sprintf("turns=%d actions=%d", len(turn.History)+1, len(reply.Actions)), start, err)
	return msg, err
}

// ActionResult is the outcome of a triggered chat action: either a new model
// message or a notice that needs no model call.
type ActionResult struct {
	Message *contract.ChatMessage `json:"message,omitempty"`
	Notice  string                `json:"notice,omitempty"`
}

// TriggerAction dispatches a suggested chat action. A query with a payload
// resubmits the payload, an email action points at the clause email drafts,
// and every other action sends its label as a new message.
func (c *Coordinator) TriggerAction(ctx context.Context, id string, action contract.ChatAction) (ActionResult, error) {
	if !action.Type.Valid() {
		return ActionResult{}, fault.New(fault.KindInputMissing, "chat action", fmt.Sprintf("unknown action type %q", action.Type))
	}

	switch {
	case action.Type == contract.ActionQuery && action.Payload != "":
		msg, err := c.Chat(ctx, id, action.Payload)
		return ActionResult{Message: &msg}, err
	case action.Type == contract.ActionEmail:
		if _, err := c.Analysis(id); err != nil {
			return ActionResult{}, err
		}
		return ActionResult{Notice: EmailDraftNotice}, nil
	default:
		msg, err := c.Chat(ctx, id, action.Label)
		return ActionResult{Message: &msg}, err
	}
}

// Speak reads a clause's negotiation script aloud. Failures are logged and
// returned; the playing flag is always released.
func (c *Coordinator) Speak(ctx context.Context, id, clauseID string) (*negotiate.AudioBuffer, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}
	script, ticket, err := sess.BeginSpeech(clauseID)
	if err != nil {
		return nil, err
	}
	defer sess.FinishSpeech(ticket)

	start := time.Now()
	buf, err := c.speaker.Synthesize(ctx, script)
	if err != nil {
		c.logger.Warn("speech failed", zap.String("session", id), zap.String("clause", clauseID), zap.Error(err))
	}
	c.record(ctx, "speech", id, "clause="+clauseID, start, err)
	return buf, err
}
