// Package registry maps capability names to their handlers and contracts.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/cinegraph/pkg/domain"
)

// Sentinel errors for registration.
var (
	ErrNotFound      = errors.New("capability not found")
	ErrAlreadyExists = errors.New("capability already registered")
	ErrEmptyName     = errors.New("capability name is empty")
)

// Handler implements a capability. It receives the arguments chosen by the
// model and returns plain text.
type Handler func(ctx context.Context, args map[string]string) (string, error)

type entry struct {
	tool    domain.Tool
	handler Handler
}

// Registry manages the available capabilities.
// It is populated at startup and only read afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a capability to the registry.
func (r *Registry) Register(tool domain.Tool, fn Handler) error {
	if strings.TrimSpace(tool.Name) == "" {
		return ErrEmptyName
	}
	if fn == nil {
		return fmt.Errorf("capability %s: nil handler", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[tool.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, handler: fn}
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (r *Registry) MustRegister(tool domain.Tool, fn Handler) {
	if err := r.Register(tool, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the contract registered under name.
func (r *Registry) Lookup(name string) (domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return domain.Tool{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e.tool, nil
}

// Tools returns every contract sorted by name.
func (r *Registry) Tools() []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke runs the named capability and returns its textual result.
//
// Invoke never fails: unknown names, missing arguments, handler errors and
// panics are all reported as text so that the model can see what happened.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]string) (out string) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Sprintf("Errore: capability sconosciuta %q", name)
	}

	var missing []string
	for _, p := range e.tool.RequiredParams() {
		if strings.TrimSpace(args[p]) == "" {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Sprintf("Errore: argomenti mancanti per %s: %s", name, strings.Join(missing, ", "))
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = fmt.Sprintf("Errore durante %s: %v", name, rec)
		}
	}()

	res, err := e.handler(ctx, args)
	if err != nil {
		return fmt.Sprintf("Errore durante %s: %v", name, err)
	}
	if strings.TrimSpace(res) == "" {
		return fmt.Sprintf("%s non ha prodotto alcun risultato.", name)
	}
	return res
}
