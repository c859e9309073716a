package node

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/dwringer/workflow-processor-node/pkg/fieldlist"
)

// Field list operations, one per supported value shape plus a list join.
const (
	OpString            = "string"
	OpStringCollection  = "string-collection"
	OpInteger           = "integer"
	OpIntegerCollection = "integer-collection"
	OpFloat             = "float"
	OpFloatCollection   = "float-collection"
	OpBoolean           = "boolean"
	OpImage             = "image"
	OpImageCollection   = "image-collection"
	OpJoin              = "join"
)

// FieldListSettings configures one list-building step. Append operations
// extend Existing with a {field_name: value} entry; join concatenates First
// and Second.
type FieldListSettings struct {
	Operation string          `json:"operation"`
	Existing  string          `json:"existing,omitempty"`
	FieldName string          `json:"field_name,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	First     string          `json:"first,omitempty"`
	Second    string          `json:"second,omitempty"`
}

// Validate checks that the settings are complete for the operation.
func (s *FieldListSettings) Validate() error {
	switch s.Operation {
	case OpJoin:
		return nil
	case OpString, OpStringCollection, OpInteger, OpIntegerCollection,
		OpFloat, OpFloatCollection, OpBoolean, OpImage, OpImageCollection:
		if s.FieldName == "" {
			return fmt.Errorf("field_name is required for operation %q", s.Operation)
		}
		if len(s.Value) == 0 {
			return fmt.Errorf("value is required for operation %q", s.Operation)
		}
		return nil
	case "":
		return fmt.Errorf("operation is required")
	default:
		return fmt.Errorf("unsupported operation: %s", s.Operation)
	}
}

// FieldListOutput is the serialized result of a list-building step.
type FieldListOutput struct {
	List string `json:"list"`
}

// FieldListExecutor builds the serialized field update lists that the
// enqueue node consumes.
type FieldListExecutor struct {
	builder *fieldlist.Builder
}

// NewFieldListExecutor creates the executor. A nil logger discards warnings.
func NewFieldListExecutor(logger *zap.Logger) *FieldListExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldListExecutor{builder: fieldlist.NewBuilder(logger)}
}

// Kind returns the node kind this executor handles.
func (e *FieldListExecutor) Kind() string {
	return "field-list-builder"
}

// Execute runs one list-building step and returns the updated list.
func (e *FieldListExecutor) Execute(ctx context.Context, config Config) ([]byte, error) {
	var settings FieldListSettings
	if err := json.Unmarshal(config.Settings, &settings); err != nil {
		return nil, fmt.Errorf("invalid field list settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	list, err := e.apply(&settings)
	if err != nil {
		return nil, err
	}
	return json.Marshal(FieldListOutput{List: list})
}

func (e *FieldListExecutor) apply(settings *FieldListSettings) (string, error) {
	switch settings.Operation {
	case OpJoin:
		return e.builder.Join(settings.First, settings.Second)
	case OpImage:
		var image fieldlist.Image
		if err := json.Unmarshal(settings.Value, &image); err != nil {
			return "", fmt.Errorf("value must be an image reference: %w", err)
		}
		return e.builder.AppendImage(settings.Existing, settings.FieldName, image)
	case OpImageCollection:
		var images []fieldlist.Image
		if err := json.Unmarshal(settings.Value, &images); err != nil {
			return "", fmt.Errorf("value must be a list of image references: %w", err)
		}
		return e.builder.AppendImageCollection(settings.Existing, settings.FieldName, images)
	default:
		value, err := decodeValue(settings.Operation, settings.Value)
		if err != nil {
			return "", err
		}
		return e.builder.Append(settings.Existing, settings.FieldName, value)
	}
}

// decodeValue parses the raw value into the shape the operation promises, so
// a mistyped value fails here instead of landing in the list.
func decodeValue(operation string, raw json.RawMessage) (interface{}, error) {
	switch operation {
	case OpString:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("value must be a string: %w", err)
		}
		return v, nil
	case OpStringCollection:
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("value must be a list of strings: %w", err)
		}
		return v, nil
	case OpInteger:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("value must be an integer: %w", err)
		}
		return v, nil
	case OpIntegerCollection:
		var v []int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("value must be a list of integers: %w", err)
		}
		return v, nil
	case OpFloat:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("value must be a number: %w", err)
		}
		return v, nil
	case OpFloatCollection:
		var v []float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("value must be a list of numbers: %w", err)
		}
		return v, nil
	case OpBoolean:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("value must be a boolean: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported operation: %s", operation)
	}
}
