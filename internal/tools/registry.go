// Package tools defines the tool catalogue exposed by the server: geography
// resolution plus the ABS statistic lookups with their threshold bands.
package tools

import (
	"context"

	"github.com/rotisserie/eris"
)

// ArgSpec documents one tool argument for the catalogue listing.
type ArgSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Result is a successful tool invocation: a human-readable summary plus the
// structured payload it was derived from.
type Result struct {
	Summary string         `json:"summary"`
	Data    map[string]any `json:"data,omitempty"`
	Source  string         `json:"source,omitempty"`
}

// Handler executes a tool against decoded JSON arguments.
type Handler func(ctx context.Context, args map[string]any) (*Result, error)

// Tool is one named entry in the catalogue.
type Tool struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Args        []ArgSpec `json:"args,omitempty"`

	run Handler
}

// Registry holds the tool catalogue in registration order.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds a tool. Registering the same name twice is a programming
// error and fails loudly.
func (r *Registry) Register(name, description string, args []ArgSpec, run Handler) error {
	if _, exists := r.byName[name]; exists {
		return eris.Errorf("tools: duplicate tool %q", name)
	}
	r.byName[name] = Tool{Name: name, Description: description, Args: args, run: run}
	r.order = append(r.order, name)
	return nil
}

// List returns the catalogue in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Call invokes a tool by name.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (*Result, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, Errorf(CodeUnknownTool, "no tool named %q", name)
	}
	return tool.run(ctx, args)
}
