package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

const (
	rootModule   = "markspace"
	renderModule = "markspace.render"
	linksModule  = "markspace.links"
	syncModule   = "markspace.sync"
	storeModule  = "markspace.store"
)

const (
	fieldDocumentPath = "document_path"
	fieldPageTitle    = "page_title"
	fieldSyncAction   = "sync_action"
	fieldSpaceKey     = "space_key"
)

// ModuleLogger returns the provider's logger for module annotated with a
// module field. A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RenderLogger is the logger used while converting documents.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// LinksLogger is the logger used by link registration and resolution.
func LinksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, linksModule)
}

// SyncLogger is the logger used by the synchronisation pipeline.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// StoreLogger is the logger used by space store implementations.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// WithDocumentContext adds the document path, page title and sync action to
// logger. Blank values are skipped.
func WithDocumentContext(logger interfaces.Logger, path, title, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		fields[fieldPageTitle] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldSyncAction] = trimmed
	}
	return WithFields(logger, fields)
}

// WithSpace adds the space key to logger.
func WithSpace(logger interfaces.Logger, key string) interfaces.Logger {
	if strings.TrimSpace(key) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldSpaceKey: key})
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
