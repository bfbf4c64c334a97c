package spacecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderDocumentMessageType = "markspace.space.render_document"
	syncSpaceMessageType      = "markspace.space.sync"
	planSpaceMessageType      = "markspace.space.plan"
)

func notBlank(code, message string) validation.Rule {
	return validation.By(func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	})
}

// RenderDocumentCommand renders one page of a space to storage format.
type RenderDocumentCommand struct {
	// Path is the Markdown file, absolute or relative to Dir.
	Path string `json:"path"`
	// Dir is the space directory. Empty uses the configured one.
	Dir string `json:"dir,omitempty"`
	// Output is the file the rendered page is written to. Empty writes to the
	// handler's writer.
	Output string `json:"output,omitempty"`
}

// Type implements command.Message.
func (RenderDocumentCommand) Type() string { return renderDocumentMessageType }

// Validate ensures a path is present before handlers execute.
func (cmd RenderDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, notBlank("markspace.space.render_document.path_required", "path is required")),
	)
}

// SyncSpaceCommand publishes a space directory to the configured store.
type SyncSpaceCommand struct {
	Dir     string `json:"dir"`
	DryRun  bool   `json:"dry_run,omitempty"`
	Archive bool   `json:"archive,omitempty"`
}

// Type implements command.Message.
func (SyncSpaceCommand) Type() string { return syncSpaceMessageType }

// Validate ensures a directory is present before handlers execute.
func (cmd SyncSpaceCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Dir, validation.Required, notBlank("markspace.space.sync.dir_required", "directory is required")),
	)
}

// PlanSpaceCommand reports what a sync of Dir would do without changing the
// store.
type PlanSpaceCommand struct {
	Dir     string `json:"dir"`
	Archive bool   `json:"archive,omitempty"`
}

// Type implements command.Message.
func (PlanSpaceCommand) Type() string { return planSpaceMessageType }

// Validate ensures a directory is present before handlers execute.
func (cmd PlanSpaceCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Dir, validation.Required, notBlank("markspace.space.plan.dir_required", "directory is required")),
	)
}
