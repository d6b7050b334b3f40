package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/pkg/domain"
	"golang.org/x/term"
)

const separator = "--------------------------------------------------"

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	source      io.Reader
	interactive bool // stdin is a terminal: a read error is not the end of input
	Reader      *bufio.Reader
	Writer      io.Writer
	Renderer    ContentRenderer

	inputChan chan inputResult
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		source: r,
		Writer: w,
		done:   make(chan struct{}),
	}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.interactive = true
	}
	h.Reader = bufio.NewReader(h.source)

	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Close stops the input pump. Reads after Close return io.EOF.
func (h *TextHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) send(res inputResult) bool {
	select {
	case h.inputChan <- res:
		return true
	case <-h.done:
		return false
	}
}

func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" && !h.send(inputResult{text: text}) {
			return
		}
		if err == nil {
			continue
		}
		if err == io.EOF && !h.interactive {
			return
		}
		if !h.send(inputResult{err: err}) {
			return
		}
		// Backoff so a terminal producing repeated errors does not spin.
		time.Sleep(50 * time.Millisecond)
	}
}

// readLine waits for the next sanitized line, re-prompting on invalid input.
func (h *TextHandler) readLine(ctx context.Context, prompt string) (string, error) {
	h.initPump()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-h.done:
			return "", io.EOF
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Errore: %v. Riprova.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// Input reads a human turn after the "Tu: " prompt.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	return h.readLine(ctx, "\nTu: ")
}

// Prompt asks a question and returns the trimmed answer.
func (h *TextHandler) Prompt(ctx context.Context, question string) (string, error) {
	return h.readLine(ctx, "\n🧑 "+question+": ")
}

// Output prints the messages appended by the turn and the capabilities it ran.
func (h *TextHandler) Output(_ context.Context, res *cinegraph.Result) error {
	if res == nil {
		return nil
	}
	for _, msg := range res.Appended {
		content := msg.Content
		if msg.Role == domain.RoleCapability {
			content = h.render(content)
		}
		fmt.Fprintf(h.Writer, "\n🤖 %s:\n%s\n%s\n", strings.ToUpper(string(msg.Role)), content, separator)
	}

	fmt.Fprintln(h.Writer, "\n🔧 TOOL INVOCATI DURANTE IL FLUSSO:")
	if len(res.Invoked) == 0 {
		fmt.Fprintln(h.Writer, "Nessun tool è stato invocato.")
		return nil
	}
	for _, call := range res.Invoked {
		fmt.Fprintf(h.Writer, "- Tool: %s\n  Args: %v\n%s\n", call.Name, call.Args, separator[:40])
	}
	return nil
}

// Content prints an artifact through the renderer.
func (h *TextHandler) Content(_ context.Context, title, body string) error {
	fmt.Fprintf(h.Writer, "\n%s\n\n%s\n", title, h.render(body))
	return nil
}

// SystemOutput prints a meta-message.
func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "\n%s\n", msg)
	return nil
}

func (h *TextHandler) render(s string) string {
	if h.Renderer == nil {
		return s
	}
	out, err := h.Renderer(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(out)
}
