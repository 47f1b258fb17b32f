// Package engine resolves commands, runs single requests and fans batch
// payloads out over the registered capability tools.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"jinaai/internal/apierr"
	"jinaai/internal/config"
	"jinaai/internal/logging"
	"jinaai/internal/params"
	"jinaai/internal/report"
	"jinaai/internal/tools"
)

// Engine dispatches raw input objects to tools.
type Engine struct {
	cfg      *config.Config
	registry *tools.Registry
}

// New creates an engine over a populated registry.
func New(cfg *config.Config, registry *tools.Registry) *Engine {
	return &Engine{cfg: cfg, registry: registry}
}

// Run handles one input object: a batch when it carries command<N> keys,
// a single command otherwise. Batch runs never fail as a whole; failures
// are reported per item.
func (e *Engine) Run(ctx context.Context, raw map[string]any) (string, error) {
	if batch, ok := e.RunBatch(ctx, raw); ok {
		return batch.Render(), nil
	}

	log := logging.WithRequestID(logging.CategoryDispatch, uuid.NewString())
	timer := logging.StartTimer(logging.CategoryDispatch, "single request")
	defer timer.Stop()

	r, err := e.Dispatch(ctx, raw)
	if err != nil {
		log.Warn("Request failed: %v", err)
		return "", err
	}
	log.Debug("Request succeeded: %s", r.Title)
	return r.Render(), nil
}

// Dispatch normalizes raw, resolves its command and runs the tool. Every
// error returned is an *apierr.Error.
func (e *Engine) Dispatch(ctx context.Context, raw map[string]any) (*report.Report, error) {
	p := params.Normalize(raw)
	command := p.Command()

	tool, ok := e.registry.Resolve(command)
	if !ok {
		logging.DispatchWarn("Unknown command %q", command)
		return nil, apierr.New(apierr.InvalidCommand, "Unknown command '%s'. Available: %s",
			command, strings.Join(e.registry.Commands(), ", "))
	}
	logging.Dispatch("Dispatching to command: %s (%d params)", tool.Name, len(p))

	result, err := e.registry.ExecuteTool(ctx, tool, p)
	if err != nil {
		var missing *tools.MissingArgError
		if errors.As(err, &missing) {
			return nil, apierr.Wrap(apierr.MissingRequiredField, err, "%s", missing.Error())
		}
		return nil, apierr.Classify(err, tool.Capability)
	}
	if result.Report == nil {
		return nil, apierr.New(apierr.TransportError, "%s returned no result", tool.Name)
	}
	return result.Report, nil
}

// recovered converts a panic value from one batch item into its failure.
func recovered(v any) error {
	return apierr.Wrap(apierr.TransportError, fmt.Errorf("panic: %v", v), "internal error: %v", v)
}
