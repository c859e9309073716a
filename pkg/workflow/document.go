package workflow

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Document is a decoded workflow/batch payload. Numbers are kept as
// json.Number so integer and float values stay distinguishable through
// parsing, copying, and type inference.
type Document map[string]interface{}

// ParseDocument decodes a workflow/batch payload.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &StructureError{Message: "payload is not a JSON object", Cause: err}
	}
	return doc, nil
}

// Clone returns a deep copy of the document.
func (d Document) Clone() (Document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, &StructureError{Message: "payload cannot be serialized", Cause: err}
	}
	return ParseDocument(raw)
}

// RefreshGraphID stamps a fresh batch graph id so repeated submissions of
// the same template stay distinct in the queue. A document without a graph
// section is left unchanged.
func (d Document) RefreshGraphID() {
	if graph := d.graph(); graph != nil {
		graph["id"] = uuid.NewString()
	}
}

// childMap walks nested objects by key, returning nil when any hop is
// missing or not an object.
func childMap(m map[string]interface{}, keys ...string) map[string]interface{} {
	current := m
	for _, key := range keys {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func (d Document) graph() map[string]interface{} {
	return childMap(d, "batch", "graph")
}

func (d Document) graphNodes() map[string]interface{} {
	return childMap(d, "batch", "graph", "nodes")
}

func (d Document) form() map[string]interface{} {
	return childMap(d, "batch", "workflow", "form")
}

func (d Document) workflowNodes() []interface{} {
	wf := childMap(d, "batch", "workflow")
	if wf == nil {
		return nil
	}
	nodes, _ := wf["nodes"].([]interface{})
	return nodes
}
