package markdown

import (
	"bytes"
	"crypto/sha256"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

type frontMatterEnvelope struct {
	Title  string         `yaml:"title"`
	Labels []string       `yaml:"labels"`
	Emoji  string         `yaml:"emoji"`
	Folder bool           `yaml:"folder"`
	Status string         `yaml:"status"`
	Cover  string         `yaml:"cover"`
	Sort   string         `yaml:"sort"`
	Custom map[string]any `yaml:",inline"`
}

func (e frontMatterEnvelope) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Status, validation.In(
			string(interfaces.PageStatusRoughDraft),
			string(interfaces.PageStatusInProgress),
			string(interfaces.PageStatusReadyForReview),
			string(interfaces.PageStatusVerified),
		)),
		validation.Field(&e.Labels, validation.Each(validation.Required)),
		validation.Field(&e.Sort, validation.In(interfaces.SortIncrementing)),
	)
}

// ParseFrontMatter splits the YAML header from the Markdown body. A file
// without a header yields an empty FrontMatter and the whole source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var env frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return interfaces.FrontMatter{}, nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse front matter").
			WithTextCode(TextCodeInvalidFrontMatter)
	}
	env.Sort = strings.ToLower(strings.TrimSpace(env.Sort))
	env.Cover = strings.TrimSpace(env.Cover)
	if err := env.Validate(); err != nil {
		return interfaces.FrontMatter{}, nil, goerrors.New("invalid front matter", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidFrontMatter).
			WithMetadata(map[string]any{"fields": err.Error()})
	}

	labels, err := normalizeLabels(env.Labels)
	if err != nil {
		return interfaces.FrontMatter{}, nil, err
	}
	return envelopeToFrontMatter(env, labels), body, nil
}

// normalizeLabels slugs each label and drops duplicates, keeping order.
func normalizeLabels(values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized, err := slug.Normalize(strings.TrimSpace(value))
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "normalize label "+value).
				WithTextCode(TextCodeInvalidFrontMatter)
		}
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out, nil
}

func envelopeToFrontMatter(env frontMatterEnvelope, labels []string) interfaces.FrontMatter {
	raw := make(map[string]any, len(env.Custom)+7)
	for key, value := range env.Custom {
		raw[key] = value
	}
	if env.Title != "" {
		raw["title"] = env.Title
	}
	if len(labels) > 0 {
		raw["labels"] = append([]string(nil), labels...)
	}
	if env.Emoji != "" {
		raw["emoji"] = env.Emoji
	}
	if env.Status != "" {
		raw["status"] = env.Status
	}
	if env.Cover != "" {
		raw["cover"] = env.Cover
	}
	if env.Sort != "" {
		raw["sort"] = env.Sort
	}
	raw["folder"] = env.Folder

	custom := make(map[string]any, len(env.Custom))
	for key, value := range env.Custom {
		custom[key] = value
	}

	return interfaces.FrontMatter{
		Title:  strings.TrimSpace(env.Title),
		Labels: labels,
		Emoji:  env.Emoji,
		Folder: env.Folder,
		Status: env.Status,
		Cover:  env.Cover,
		Sort:   env.Sort,
		Custom: custom,
		Raw:    raw,
	}
}

// BuildDocument assembles a Document from a space-relative path and the raw
// file content.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		var typed *goerrors.Error
		if goerrors.As(err, &typed) {
			return nil, typed.WithMetadata(map[string]any{"source": path})
		}
		return nil, err
	}
	sum := sha256.Sum256(source)
	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
		Checksum:     sum[:],
	}, nil
}
