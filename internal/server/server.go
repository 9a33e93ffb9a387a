// Package server exposes sessions, analyses, the coach and speech over
// HTTP/JSON.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/config"
	"github.com/ericksa/lexinegotiate/internal/coordinator"
	"github.com/ericksa/lexinegotiate/internal/dashboard"
	"github.com/ericksa/lexinegotiate/internal/fault"
	"github.com/ericksa/lexinegotiate/internal/negotiate"
	"github.com/ericksa/lexinegotiate/internal/session"
	lexmcp "github.com/ericksa/lexinegotiate/pkg/mcp"
)

// multipartOverhead is allowed on top of the upload limit for form framing.
const multipartOverhead = 1 << 20

// Options configures a Server. Tools and Config are optional.
type Options struct {
	Coordinator    *coordinator.Coordinator
	Tools          *lexmcp.Handler
	Config         *config.Config
	MaxUploadBytes int64
	Logger         *zap.Logger
}

type Server struct {
	coord     *coordinator.Coordinator
	tools     *lexmcp.Handler
	cfg       *config.Config
	maxUpload int64
	logger    *zap.Logger
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &Server{
		coord:     opts.Coordinator,
		tools:     opts.Tools,
		cfg:       opts.Config,
		maxUpload: maxUpload,
		logger:    logger.Named("server"),
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.Register(r)
	return r
}

// Register mounts every route on r.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods("GET")
	// Preflight requests must match a route for the CORS middleware to run.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/sessions", s.createSession).Methods("POST")
	sr := r.PathPrefix("/sessions/{id}").Subrouter()
	sr.HandleFunc("", s.getSession).Methods("GET")
	sr.HandleFunc("", s.deleteSession).Methods("DELETE")
	sr.HandleFunc("/input", s.setInput).Methods("PUT")
	sr.HandleFunc("/upload", s.upload).Methods("POST")
	sr.HandleFunc("/upload", s.clearUpload).Methods("DELETE")
	sr.HandleFunc("/analyze", s.analyze).Methods("POST")
	sr.HandleFunc("/reset", s.reset).Methods("POST")
	sr.HandleFunc("/chat", s.chat).Methods("POST")
	sr.HandleFunc("/chat", s.clearChat).Methods("DELETE")
	sr.HandleFunc("/chat/actions", s.chatAction).Methods("POST")
	sr.HandleFunc("/clauses/{clauseID}", s.clauseDetail).Methods("GET")
	sr.HandleFunc("/clauses/{clauseID}/email", s.clauseEmail).Methods("GET")
	sr.HandleFunc("/clauses/{clauseID}/speech", s.clauseSpeech).Methods("POST")
	sr.HandleFunc("/share", s.share).Methods("GET")
	sr.HandleFunc("/memo", s.memo).Methods("GET")

	if s.tools != nil {
		r.HandleFunc("/tools", s.listTools).Methods("GET")
		r.HandleFunc("/tools/{worker}/{tool}", s.executeTool).Methods("POST")
		r.PathPrefix("/mcp").Handler(s.tools)
	}
	if s.cfg != nil {
		config.NewConfigAPI(s.cfg).Register(r)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    fault.Kind `json:"kind"`
	Message string     `json:"message"`
	Image   bool       `json:"image"`
	Hint    string     `json:"hint,omitempty"`
}

// statusFor maps a failure kind to an HTTP status.
func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.KindInputMissing, fault.KindMalformedImage:
		return http.StatusBadRequest
	case fault.KindBusy, fault.KindInvalidState:
		return http.StatusConflict
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindContentRefusal:
		return http.StatusUnprocessableEntity
	case fault.KindSchemaViolation, fault.KindParseFailure, fault.KindNoAudioData:
		return http.StatusBadGateway
	case fault.KindTransportFailure, fault.KindShareUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := fault.KindOf(err)
	status := statusFor(kind)
	body := errorBody{Error: errorDetail{
		Kind:    kind,
		Message: fault.Message(err),
		Image:   fault.IsImageRelated(err),
	}}
	if body.Error.Image && kind != fault.KindNotFound {
		body.Error.Hint = dashboard.ImageRetryHint
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", zap.String("path", r.URL.Path), zap.String("kind", string(kind)), zap.Error(err))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, op string, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fault.Wrap(fault.KindInputMissing, op, err, "invalid JSON body")
	}
	return nil
}

func (s *Server) view(w http.ResponseWriter, r *http.Request, status int, st session.State) {
	preview := r.URL.Query().Get("preview") == "true"
	writeJSON(w, status, dashboard.NewSessionView(st, negotiate.StarterQuestions, preview))
}
