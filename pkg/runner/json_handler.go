package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/cinegraph"
)

// JSONEvent is one line written by the JSONHandler.
type JSONEvent struct {
	Type     string            `json:"type"`
	Message  string            `json:"message,omitempty"`
	Title    string            `json:"title,omitempty"`
	Question string            `json:"question,omitempty"`
	Result   *cinegraph.Result `json:"result,omitempty"`
}

// Event types emitted by the JSONHandler.
const (
	EventResult  = "result"
	EventContent = "content"
	EventPrompt  = "prompt"
	EventSystem  = "system"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Input lines may be a JSON string or raw text.
type JSONHandler struct {
	mu      sync.Mutex
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(ev JSONEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(ev)
}

// Input reads one line. It does not honor ctx while blocked on the reader.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

// Prompt emits a prompt event and reads the answer.
func (h *JSONHandler) Prompt(ctx context.Context, question string) (string, error) {
	if err := h.emit(JSONEvent{Type: EventPrompt, Question: question}); err != nil {
		return "", err
	}
	return h.Input(ctx)
}

// Output emits the whole result.
func (h *JSONHandler) Output(_ context.Context, res *cinegraph.Result) error {
	return h.emit(JSONEvent{Type: EventResult, Result: res})
}

// Content emits an artifact.
func (h *JSONHandler) Content(_ context.Context, title, body string) error {
	return h.emit(JSONEvent{Type: EventContent, Title: title, Message: body})
}

// SystemOutput emits a meta-message.
func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.emit(JSONEvent{Type: EventSystem, Message: msg})
}
