package limiter

import (
	"fmt"
	"time"

	"github.com/yourusername/rsvpfence/core"
	"github.com/yourusername/rsvpfence/store"
)

// Fixed policies for the three RSVP actions.
var (
	// SubmitPolicy limits new submissions per client IP
	SubmitPolicy = core.Policy{Name: "submit", Max: 3, Window: 5 * time.Minute}

	// EditPolicy limits updates per capability token
	EditPolicy = core.Policy{Name: "edit", Max: 5, Window: time.Minute}

	// ViewPolicy limits edit-page loads per capability token
	ViewPolicy = core.Policy{Name: "view", Max: 10, Window: time.Minute}
)

// Registry holds the limiters for submit, edit and view over one shared store.
type Registry struct {
	submit *Limiter
	edit   *Limiter
	view   *Limiter
}

// NewRegistry builds the three fixed limiters over s.
func NewRegistry(s store.Store, opts ...Option) (*Registry, error) {
	submit, err := New(SubmitPolicy, s, opts...)
	if err != nil {
		return nil, fmt.Errorf("submit limiter: %w", err)
	}
	edit, err := New(EditPolicy, s, opts...)
	if err != nil {
		return nil, fmt.Errorf("edit limiter: %w", err)
	}
	view, err := New(ViewPolicy, s, opts...)
	if err != nil {
		return nil, fmt.Errorf("view limiter: %w", err)
	}

	return &Registry{submit: submit, edit: edit, view: view}, nil
}

// Submit returns the per-IP submission limiter
func (r *Registry) Submit() *Limiter { return r.submit }

// Edit returns the per-token update limiter
func (r *Registry) Edit() *Limiter { return r.edit }

// View returns the per-token edit-page limiter
func (r *Registry) View() *Limiter { return r.view }
