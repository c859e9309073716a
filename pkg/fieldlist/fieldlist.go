// Package fieldlist assembles the ad-hoc JSON lists of single key-value
// entries that the workflow processor accepts as its update input. Lists
// are carried between nodes as JSON strings, so every operation takes and
// returns serialized lists.
package fieldlist

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// Image mirrors the host's image reference, which travels by name.
type Image struct {
	ImageName string `json:"image_name"`
}

// Builder appends entries to serialized field lists.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a builder. A nil logger discards warnings.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// normalizeList returns the existing list, or a fresh empty one when the
// input is blank or not a JSON array. Bad input is replaced with a warning,
// it never aborts the build.
func (b *Builder) normalizeList(existing string) string {
	trimmed := strings.TrimSpace(existing)
	if trimmed == "" {
		return "[]"
	}
	if !gjson.Valid(trimmed) {
		b.logger.Warn("Existing list is not valid JSON, starting a new list",
			zap.String("input", trimmed))
		return "[]"
	}
	if !gjson.Parse(trimmed).IsArray() {
		b.logger.Warn("Existing JSON is not a list, starting a new list")
		return "[]"
	}
	return trimmed
}

// Append adds a {fieldName: value} entry to the list.
func (b *Builder) Append(existing, fieldName string, value interface{}) (string, error) {
	if fieldName == "" {
		return "", fmt.Errorf("field name cannot be empty")
	}
	out, err := sjson.Set(b.normalizeList(existing), "-1", map[string]interface{}{fieldName: value})
	if err != nil {
		return "", fmt.Errorf("failed to append entry: %w", err)
	}
	return out, nil
}

// AppendImage adds an entry holding the image's name.
func (b *Builder) AppendImage(existing, fieldName string, image Image) (string, error) {
	return b.Append(existing, fieldName, image.ImageName)
}

// AppendImageCollection adds an entry holding the names of a whole image
// collection.
func (b *Builder) AppendImageCollection(existing, fieldName string, images []Image) (string, error) {
	names := make([]interface{}, 0, len(images))
	for _, image := range images {
		names = append(names, image.ImageName)
	}
	return b.Append(existing, fieldName, names)
}

// Join concatenates two lists. A side that is not a valid list contributes
// nothing.
func (b *Builder) Join(first, second string) (string, error) {
	out := b.normalizeList(first)
	for _, entry := range gjson.Parse(b.normalizeList(second)).Array() {
		var err error
		out, err = sjson.SetRaw(out, "-1", entry.Raw)
		if err != nil {
			return "", fmt.Errorf("failed to join lists: %w", err)
		}
	}
	return out, nil
}
