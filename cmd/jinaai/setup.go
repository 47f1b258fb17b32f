package main

import (
	"jinaai/internal/config"
	"jinaai/internal/content"
	"jinaai/internal/engine"
	"jinaai/internal/imagestore"
	"jinaai/internal/logging"
	"jinaai/internal/tools"
	"jinaai/internal/tools/capabilities"
	"jinaai/internal/transport"
)

// buildEngine wires config into the transport, image store, content
// processor and tool registry.
func buildEngine(cfg *config.Config) (*engine.Engine, *tools.Registry) {
	store := imagestore.New(cfg.ImageStore)
	if !store.Configured() {
		logging.BootDebug("Image store not configured; screenshots fall back to base64")
	}

	registry := tools.NewRegistry()
	deps := capabilities.Deps{
		Config:    cfg,
		Client:    transport.NewClient(cfg),
		Processor: content.NewProcessor(store),
	}
	// Names are fixed and distinct, so registration cannot clash.
	if err := capabilities.RegisterAll(registry, deps); err != nil {
		panic(err)
	}
	logging.Boot("Registered %d commands (%d spellings)", registry.Count(), len(registry.Commands()))
	return engine.New(cfg, registry), registry
}
