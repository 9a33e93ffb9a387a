package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ericksa/lexinegotiate/internal/contract"
	"github.com/ericksa/lexinegotiate/internal/dashboard"
	"github.com/ericksa/lexinegotiate/internal/fault"
)

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, http.StatusCreated, s.coord.CreateSession())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.coord.State(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(w, r, http.StatusOK, st)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.DeleteSession(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, "set input", &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.coord.SetInput(mux.Vars(r)["id"], req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(w, r, http.StatusOK, st)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		s.writeError(w, r, uploadError("the upload could not be read", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, uploadError(`missing "file" field`, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		s.writeError(w, r, uploadError("the upload could not be read", err))
		return
	}
	if int64(len(data)) > s.maxUpload {
		s.writeError(w, r, uploadError(fmt.Sprintf("the file exceeds the %d byte limit", s.maxUpload), nil))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}

	st, err := s.coord.Upload(mux.Vars(r)["id"], header.Filename, mimeType, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(w, r, http.StatusOK, st)
}

func uploadError(msg string, err error) error {
	return &fault.Error{Kind: fault.KindMalformedImage, Op: "upload", Message: msg, Image: true, Err: err}
}

func (s *Server) clearUpload(w http.ResponseWriter, r *http.Request) {
	st, err := s.coord.ClearUpload(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(w, r, http.StatusOK, st)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	st, err := s.coord.Analyze(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(w, r, http.StatusOK, st)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	st, err := s.coord.Reset(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(w, r, http.StatusOK, st)
}

type chatResponse struct {
	Message *contract.ChatMessage `json:"message,omitempty"`
	Notice  string                `json:"notice,omitempty"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, "chat", &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	msg, err := s.coord.Chat(r.Context(), mux.Vars(r)["id"], req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: &msg})
}

func (s *Server) clearChat(w http.ResponseWriter, r *http.Request) {
	st, err := s.coord.ClearChat(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(w, r, http.StatusOK, st)
}

func (s *Server) chatAction(w http.ResponseWriter, r *http.Request) {
	var action contract.ChatAction
	if err := decodeBody(r, "chat action", &action); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.coord.TriggerAction(r.Context(), mux.Vars(r)["id"], action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: res.Message, Notice: res.Notice})
}

// clause resolves the {id} and {clauseID} route variables.
func (s *Server) clause(r *http.Request) (contract.Clause, error) {
	vars := mux.Vars(r)
	a, err := s.coord.Analysis(vars["id"])
	if err != nil {
		return contract.Clause{}, err
	}
	c, ok := a.Clause(vars["clauseID"])
	if !ok {
		return contract.Clause{}, fault.New(fault.KindNotFound, "clause", fmt.Sprintf("clause %q not found", vars["clauseID"]))
	}
	return c, nil
}

func mailClient(r *http.Request) dashboard.MailClient {
	return dashboard.MailClient(r.URL.Query().Get("client"))
}

func (s *Server) clauseDetail(w http.ResponseWriter, r *http.Request) {
	c, err := s.clause(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	client := mailClient(r)
	if client == "" {
		client = dashboard.ClientOutlook
	}
	writeJSON(w, http.StatusOK, dashboard.NewClauseDetail(c, client))
}

func (s *Server) clauseEmail(w http.ResponseWriter, r *http.Request) {
	c, err := s.clause(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	link, err := dashboard.NewEmailLink(c, contract.Tone(r.URL.Query().Get("tone")), mailClient(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (s *Server) clauseSpeech(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	buf, err := s.coord.Speak(r.Context(), vars["id"], vars["clauseID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var wav bytes.Buffer
	if err := buf.WriteWAV(&wav); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", fmt.Sprint(wav.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := wav.WriteTo(w); err != nil {
		s.logger.Debug("speech write aborted", zap.Error(err))
	}
}

type shareResponse struct {
	dashboard.SharePayload
	ClipboardText string `json:"clipboard_text"`
}

func (s *Server) share(w http.ResponseWriter, r *http.Request) {
	a, err := s.coord.Analysis(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p := dashboard.NewSharePayload(a, r.URL.Query().Get("url"))
	writeJSON(w, http.StatusOK, shareResponse{SharePayload: p, ClipboardText: p.ClipboardText()})
}

func (s *Server) memo(w http.ResponseWriter, r *http.Request) {
	a, err := s.coord.Analysis(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	md := dashboard.Memo(a)
	if id := r.URL.Query().Get("clause"); id != "" {
		c, ok := a.Clause(id)
		if !ok {
			s.writeError(w, r, fault.New(fault.KindNotFound, "memo", fmt.Sprintf("clause %q not found", id)))
			return
		}
		md = dashboard.ClauseMemo(c)
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, md)
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	type tool struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var out []tool
	for _, t := range s.tools.Tools() {
		out = append(out, tool{Name: t.Name, Description: t.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) executeTool(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var args json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, fault.Wrap(fault.KindInputMissing, "tool", err, "invalid JSON body"))
		return
	}

	result, err := s.tools.ExecuteTool(r.Context(), vars["worker"]+"_"+vars["tool"], args)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}
