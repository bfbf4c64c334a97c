package spacecmd

import (
	"errors"

	"github.com/goliatone/go-markspace/internal/commands"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the space command handlers produced by RegisterSpaceCommands.
type HandlerSet struct {
	Render *RenderDocumentHandler
	Sync   *SyncSpaceHandler
	Plan   *PlanSpaceHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	renderHandlerOpts []commands.HandlerOption[RenderDocumentCommand]
	syncHandlerOpts   []commands.HandlerOption[SyncSpaceCommand]
	planHandlerOpts   []commands.HandlerOption[PlanSpaceCommand]
}

// WithRenderHandlerOptions forwards options to the RenderDocumentHandler constructor.
func WithRenderHandlerOptions(opts ...commands.HandlerOption[RenderDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.renderHandlerOpts = append(cfg.renderHandlerOpts, opts...)
	}
}

// WithSyncHandlerOptions forwards options to the SyncSpaceHandler constructor.
func WithSyncHandlerOptions(opts ...commands.HandlerOption[SyncSpaceCommand]) Option {
	return func(cfg *options) {
		cfg.syncHandlerOpts = append(cfg.syncHandlerOpts, opts...)
	}
}

// WithPlanHandlerOptions forwards options to the PlanSpaceHandler constructor.
func WithPlanHandlerOptions(opts ...commands.HandlerOption[PlanSpaceCommand]) Option {
	return func(cfg *options) {
		cfg.planHandlerOpts = append(cfg.planHandlerOpts, opts...)
	}
}

// RegisterSpaceCommands builds the space command handlers and registers them
// with reg when one is given.
func RegisterSpaceCommands(reg CommandRegistry, ws Workspace, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if ws.OpenRemote == nil {
		return nil, errors.New("space command registration: remote opener is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if provider != nil {
		ws.Logger = commands.CommandLogger(provider, "space")
		ws.Provider = provider
	}

	set := &HandlerSet{
		Render: NewRenderDocumentHandler(ws, cfg.renderHandlerOpts...),
		Sync:   NewSyncSpaceHandler(ws, cfg.syncHandlerOpts...),
		Plan:   NewPlanSpaceHandler(ws, cfg.planHandlerOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Render, set.Sync, set.Plan} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
