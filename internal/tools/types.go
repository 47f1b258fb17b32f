// Package tools holds the command registry: each upstream capability is
// registered as a Tool under a canonical name plus aliases, and the registry
// resolves a caller's command to the tool that serves it.
package tools

import (
	"context"

	"jinaai/internal/params"
	"jinaai/internal/report"
	"jinaai/internal/wire"
)

// Property describes a single parameter for the commands listing.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema lists the arguments a tool understands.
type ToolSchema struct {
	// Required lists parameters that must be present and non-blank.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc runs a tool against normalized parameters.
type ExecuteFunc func(ctx context.Context, args params.Params) (*report.Report, error)

// Tool is one command.
type Tool struct {
	// Name is the canonical command name.
	Name string

	// Aliases are alternative command names, matched case-insensitively.
	Aliases []string

	Description string

	// Capability is the upstream operation the tool calls; it selects the
	// error wording when a failure is classified.
	Capability wire.Capability

	Execute ExecuteFunc

	Schema ToolSchema
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Report is the rendered outcome; nil when Error is set.
	Report *report.Report

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
