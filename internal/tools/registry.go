package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"jinaai/internal/logging"
	"jinaai/internal/params"
)

// Registry holds all available tools and resolves command names, aliases
// included, to them. It is thread-safe.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// byName maps every lower-cased name and alias to its tool.
	byName map[string]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		byName: make(map[string]*Tool),
	}
}

// Register adds a tool to the registry. Names and aliases share one
// namespace; a clash with either is an error.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{tool.Name}, tool.Aliases...)
	for _, k := range keys {
		if _, exists := r.byName[strings.ToLower(k)]; exists {
			return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, k)
		}
	}

	r.tools[tool.Name] = tool
	for _, k := range keys {
		r.byName[strings.ToLower(k)] = tool
	}

	logging.DispatchDebug("Registered tool: %s (capability=%s, aliases=%v)", tool.Name, tool.Capability, tool.Aliases)
	return nil
}

// MustRegister registers a tool and panics on error.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Resolve finds a tool by name or alias, ignoring case and surrounding
// whitespace.
func (r *Registry) Resolve(command string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.byName[strings.ToLower(strings.TrimSpace(command))]
	return tool, ok
}

// All returns all registered tools sorted by name.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Commands returns every accepted command spelling: names and aliases.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ExecuteTool runs a specific tool with the given arguments.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, args params.Params) (*ToolResult, error) {
	start := time.Now()

	if err := r.validateArgs(tool, args); err != nil {
		return &ToolResult{
			ToolName:   tool.Name,
			Error:      err,
			DurationMs: time.Since(start).Milliseconds(),
		}, err
	}

	logging.DispatchDebug("Executing tool: %s", tool.Name)
	rep, err := tool.Execute(ctx, args)

	duration := time.Since(start)
	logging.DispatchDebug("Tool %s completed in %v (success=%v)", tool.Name, duration, err == nil)

	return &ToolResult{
		ToolName:   tool.Name,
		Report:     rep,
		Error:      err,
		DurationMs: duration.Milliseconds(),
	}, err
}

// validateArgs checks that all required arguments are present and not blank.
func (r *Registry) validateArgs(tool *Tool, args params.Params) error {
	for _, required := range tool.Schema.Required {
		if args.Text(required) == "" {
			return &MissingArgError{Tool: tool.Name, Arg: required}
		}
	}
	return nil
}
