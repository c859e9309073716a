// Package workflow rewrites pre-authored workflow/batch payloads for a
// node-based image-generation host. A Processor parses the payload's form
// definition into an ordered sequence of user-exposed fields, resolves
// update keys against it by name or label, and applies type-coerced values
// to both the executable graph and the workflow definition it was derived
// from, keeping the two in sync.
package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Update is one override item: exactly one key (a field name or label)
// mapped to the value to set. Order matters across the update list; when a
// key matches several exposed fields, successive occurrences bind successive
// fields in form declaration order.
type Update map[string]interface{}

// Processor resolves user-supplied field overrides against a workflow
// payload's form definition.
//
// Construction parses the form once; the field sequence and lookup index
// are never mutated afterward, so a single Processor may be shared across
// goroutines, with each Apply call working on its own copy of the document.
type Processor struct {
	doc    Document
	fields []ExposedField
	lookup map[string][]int
	logger *zap.Logger
}

// NewProcessor builds a processor for an already-parsed document. A nil
// logger discards warnings.
func NewProcessor(doc Document, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fields, err := indexExposedFields(doc, logger)
	if err != nil {
		return nil, err
	}
	return &Processor{
		doc:    doc,
		fields: fields,
		lookup: buildLookup(fields),
		logger: logger,
	}, nil
}

// NewProcessorFromJSON parses a raw payload and builds a processor for it.
func NewProcessorFromJSON(data []byte, logger *zap.Logger) (*Processor, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return NewProcessor(doc, logger)
}

// Fields returns the exposed fields in form declaration order.
func (p *Processor) Fields() []ExposedField {
	out := make([]ExposedField, len(p.fields))
	copy(out, p.fields)
	return out
}

// Describe renders the exposed fields as a human-readable listing, one line
// per field, suitable for surfacing in a node's input description.
func (p *Processor) Describe() string {
	var sb strings.Builder
	sb.WriteString("Available fields (name: type):\n")
	for _, field := range p.fields {
		if field.Label != "" {
			fmt.Fprintf(&sb, "- %s: %s (label: %q)\n", field.FieldName, field.Type, field.Label)
		} else {
			fmt.Fprintf(&sb, "- %s: %s\n", field.FieldName, field.Type)
		}
	}
	return sb.String()
}

// ParseUpdates decodes an update list from JSON. Blank input is treated as
// an empty list; anything else must be a JSON array of objects.
func ParseUpdates(data []byte) ([]Update, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	if !gjson.Valid(trimmed) || !gjson.Parse(trimmed).IsArray() {
		return nil, fmt.Errorf("updates must be a JSON array of single-key objects")
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var updates []Update
	if err := dec.Decode(&updates); err != nil {
		return nil, fmt.Errorf("updates must be a JSON array of single-key objects: %w", err)
	}
	return updates, nil
}
