// Package session holds the ephemeral per-user state of one negotiation
// workspace: input, analysis, chat transcript and the busy flags that keep
// model calls from overlapping.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
)

// Phase is the top-level analysis state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAnalyzing Phase = "analyzing"
	PhaseReady     Phase = "ready"
	PhaseError     Phase = "error"
)

// Upload is a file preview kept as a data URI.
type Upload struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	DataURI  string `json:"data_uri"`
}

// IsPDF reports whether the upload is a PDF document.
func (u *Upload) IsPDF() bool { return u != nil && u.MIMEType == "application/pdf" }

// Failure is the last analysis error as shown to the user.
type Failure struct {
	Kind    fault.Kind `json:"kind"`
	Message string     `json:"message"`
	Image   bool       `json:"image"`
}

// Ticket identifies an in-flight call. A ticket issued before a reset or a
// new analysis is stale and its result is discarded.
type Ticket struct {
	epoch uint64
}

// State is an immutable copy of a session for rendering.
type State struct {
	ID            string
	Phase         Phase
	InputText     string
	Upload        *Upload
	Analysis      *contract.ContractAnalysis
	Failure       *Failure
	Chat          []contract.ChatMessage
	ChatSending   bool
	SpeechPlaying bool
	SpeechClause  string
	CreatedAt     time.Time
	LastSeen      time.Time
}

// Session is safe for concurrent use. Model calls happen outside the lock:
// Begin* methods claim a busy flag and return a Ticket, Finish* methods
// release it.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	lastSeen  time.Time
	now       func() time.Time

	epoch     uint64
	phase     Phase
	inputText string
	upload    *Upload
	analysis  *contract.ContractAnalysis
	failure   *Failure

	chat          []contract.ChatMessage
	chatSending   bool
	speechPlaying bool
	speechClause  string
}

func newSession(id string, now func() time.Time) *Session {
	t := now()
	return &Session{id: id, createdAt: t, lastSeen: t, now: now, phase: PhaseIdle}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// LastSeen returns the time of the last interaction.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() { s.lastSeen = s.now() }

func (s *Session) busy(op string) error {
	if s.phase == PhaseAnalyzing {
		return fault.New(fault.KindBusy, op, "an analysis is already in progress")
	}
	return nil
}

// SetInput stores the pasted contract text.
func (s *Session) SetInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.busy("set input"); err != nil {
		return err
	}
	s.inputText = text
	return nil
}

// SetUpload stores a file preview, replacing any previous one.
func (s *Session) SetUpload(u Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.busy("upload"); err != nil {
		return err
	}
	s.upload = &u
	return nil
}

// ClearUpload removes the file preview.
func (s *Session) ClearUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.busy("clear upload"); err != nil {
		return err
	}
	s.upload = nil
	return nil
}

// BeginAnalysis moves the session to analyzing and returns the input to
// send. It is allowed from idle, ready and error, and invalidates any chat
// or speech call still in flight.
func (s *Session) BeginAnalysis() (negotiate.Input, Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.busy("analyze"); err != nil {
		return negotiate.Input{}, Ticket{}, err
	}

	in := negotiate.Input{Text: s.inputText}
	if s.upload != nil {
		in.Image = s.upload.DataURI
	}
	if in.Blank() {
		return negotiate.Input{}, Ticket{}, fault.New(fault.KindInputMissing, "analyze", "paste contract text or upload an image or PDF first")
	}

	s.epoch++
	s.phase = PhaseAnalyzing
	s.failure = nil
	s.chatSending = false
	s.speechPlaying = false
	s.speechClause = ""
	return in, Ticket{epoch: s.epoch}, nil
}

// FinishAnalysis records the outcome. Success replaces any previous analysis
// and starts a fresh transcript. Failure keeps the input so it can be edited;
// with a previous analysis the session stays ready and only records the
// failure.
// It reports false when the ticket is stale.
func (s *Session) FinishAnalysis(t Ticket, analysis *contract.ContractAnalysis, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if t.epoch != s.epoch || s.phase != PhaseAnalyzing {
		return false
	}

	if err != nil {
		s.failure = &Failure{Kind: fault.KindOf(err), Message: fault.Message(err), Image: fault.IsImageRelated(err)}
		// A failed re-analysis leaves the previous result and transcript usable.
		if s.analysis != nil {
			s.phase = PhaseReady
			return true
		}
		s.phase = PhaseError
		return true
	}
	s.phase = PhaseReady
	s.analysis = analysis
	s.chat = nil
	return true
}

// Reset returns the session to its initial state. Calls in flight are
// invalidated. Reset is idempotent.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.busy("reset"); err != nil {
		return err
	}
	s.epoch++
	s.phase = PhaseIdle
	s.inputText = ""
	s.upload = nil
	s.analysis = nil
	s.failure = nil
	s.chat = nil
	s.chatSending = false
	s.speechPlaying = false
	s.speechClause = ""
	return nil
}

func (s *Session) requireReady(op string) error {
	if err := s.busy(op); err != nil {
		return err
	}
	if s.phase != PhaseReady || s.analysis == nil {
		return fault.New(fault.KindInvalidState, op, "analyze a contract first")
	}
	return nil
}

// ChatTurn is what a chat call needs from the session.
type ChatTurn struct {
	History []contract.Turn
	Context string
	Ticket  Ticket
}

// BeginChat appends the user message and claims the chat slot.
func (s *Session) BeginChat(message string) (ChatTurn, error) {
	const op = "chat"

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if strings.TrimSpace(message) == "" {
		return ChatTurn{}, fault.New(fault.KindInputMissing, op, "type a question first")
	}
	if err := s.requireReady(op); err != nil {
		return ChatTurn{}, err
	}
	if s.chatSending {
		return ChatTurn{}, fault.New(fault.KindBusy, op, "the coach is still answering")
	}

	history := make([]contract.Turn, len(s.chat))
	for i, m := range s.chat {
		history[i] = contract.Turn{Role: m.Role, Text: m.Content}
	}
	s.chat = append(s.chat, contract.ChatMessage{Role: contract.RoleUser, Content: message, Timestamp: s.now()})
	s.chatSending = true

	return ChatTurn{
		History: history,
		Context: negotiate.ContractContext(s.analysis),
		Ticket:  Ticket{epoch: s.epoch},
	}, nil
}

// FinishChat appends the model reply, or the connection-trouble notice when
// err is set, and releases the chat slot.
func (s *Session) FinishChat(t Ticket, reply contract.Reply, err error) (contract.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if t.epoch != s.epoch {
		return contract.ChatMessage{}, false
	}
	s.chatSending = false

	msg := contract.ChatMessage{Role: contract.RoleModel, Content: reply.Text, Actions: reply.Actions, Timestamp: s.now()}
	if err != nil {
		msg = contract.ChatMessage{Role: contract.RoleModel, Content: negotiate.ChatFailureMessage, Timestamp: s.now()}
	}
	s.chat = append(s.chat, msg)
	return msg, true
}

// ClearChat empties the transcript.
func (s *Session) ClearChat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.busy("clear chat"); err != nil {
		return err
	}
	if s.chatSending {
		return fault.New(fault.KindBusy, "clear chat", "the coach is still answering")
	}
	s.chat = nil
	return nil
}

// BeginSpeech claims the speech slot and returns the clause's script.
func (s *Session) BeginSpeech(clauseID string) (string, Ticket, error) {
	const op = "speech"

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireReady(op); err != nil {
		return "", Ticket{}, err
	}
	if s.speechPlaying {
		return "", Ticket{}, fault.New(fault.KindBusy, op, "a script is already playing")
	}
	c, ok := s.analysis.Clause(clauseID)
	if !ok {
		return "", Ticket{}, fault.New(fault.KindNotFound, op, "no clause with id "+clauseID)
	}
	s.speechPlaying = true
	s.speechClause = clauseID
	return c.NegotiationScript, Ticket{epoch: s.epoch}, nil
}

// FinishSpeech releases the speech slot.
func (s *Session) FinishSpeech(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if t.epoch != s.epoch {
		return
	}
	s.speechPlaying = false
	s.speechClause = ""
}

// Analysis returns the current analysis, or InvalidState when there is none.
func (s *Session) Analysis() (*contract.ContractAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireReady("read analysis"); err != nil {
		return nil, err
	}
	return s.analysis, nil
}

// Snapshot copies the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:            s.id,
		Phase:         s.phase,
		InputText:     s.inputText,
		Analysis:      s.analysis,
		ChatSending:   s.chatSending,
		SpeechPlaying: s.speechPlaying,
		SpeechClause:  s.speechClause,
		CreatedAt:     s.createdAt,
		LastSeen:      s.lastSeen,
	}
	if s.upload != nil {
		u := *s.upload
		st.Upload = &u
	}
	if s.failure != nil {
		f := *s.failure
		st.Failure = &f
	}
	if len(s.chat) > 0 {
		st.Chat = append([]contract.ChatMessage(nil), s.chat...)
	}
	return st
}
