package workflow

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Apply resolves the update list against the exposed fields and returns a
// new document with every binding written to both the graph and the
// workflow representations. The receiver's document is never modified.
//
// A field that the form exposes but one of the representations no longer
// carries is logged and skipped; a payload without a graph nodes section is
// fatal for the whole call.
func (p *Processor) Apply(updates []Update) (Document, error) {
	out, err := p.doc.Clone()
	if err != nil {
		return nil, err
	}

	graphNodes := out.graphNodes()
	if len(graphNodes) == 0 {
		return nil, newStructureError("payload has no batch.graph.nodes section")
	}

	workflowNodes := workflowNodesByID(out)
	if len(workflowNodes) == 0 {
		p.logger.Warn("batch.workflow.nodes is missing or empty, updates apply to the graph only")
	}

	bindings, err := p.resolve(updates)
	if err != nil {
		return nil, err
	}

	for _, b := range bindings {
		coerced, err := coerce(b.value, b.field.Type)
		if err != nil {
			return nil, &CoercionError{
				Key:       b.key,
				NodeID:    b.field.NodeID,
				FieldName: b.field.FieldName,
				Value:     b.value,
				Target:    b.field.Type,
				Cause:     err,
			}
		}
		shaped := graphShape(coerced, b.field.Type)
		p.applyToGraph(graphNodes, b.field, shaped)
		p.applyToWorkflow(workflowNodes, b.field, shaped)
	}

	return out, nil
}

func (p *Processor) applyToGraph(graphNodes map[string]interface{}, field ExposedField, value interface{}) {
	node, ok := graphNodes[field.NodeID].(map[string]interface{})
	if !ok {
		p.logger.Warn("Graph node not found, skipping graph update",
			zap.String("node_id", field.NodeID),
			zap.String("field", field.FieldName))
		return
	}
	if _, present := node[field.FieldName]; present {
		node[field.FieldName] = value
		return
	}
	// A board input set to "Auto" is omitted from the graph entirely, so
	// the key has to be created rather than skipped.
	if field.FieldName == "board" {
		node["board"] = value
		return
	}
	p.logger.Warn("Field not present in graph node, skipping graph update",
		zap.String("node_id", field.NodeID),
		zap.String("field", field.FieldName))
}

func (p *Processor) applyToWorkflow(nodes map[string]map[string]interface{}, field ExposedField, value interface{}) {
	inputs := childMap(nodes[field.NodeID], "data", "inputs")
	input, _ := inputs[field.FieldName].(map[string]interface{})
	if input == nil {
		p.logger.Warn("Workflow node input not found, skipping workflow update",
			zap.String("node_id", field.NodeID),
			zap.String("field", field.FieldName))
		return
	}
	if _, ok := input["value"]; !ok {
		p.logger.Warn("Workflow node input has no value slot, skipping workflow update",
			zap.String("node_id", field.NodeID),
			zap.String("field", field.FieldName))
		return
	}
	input["value"] = value
}

func workflowNodesByID(doc Document) map[string]map[string]interface{} {
	byID := make(map[string]map[string]interface{})
	for _, raw := range doc.workflowNodes() {
		node, _ := raw.(map[string]interface{})
		if node == nil {
			continue
		}
		if id, _ := node["id"].(string); id != "" {
			byID[id] = node
		}
	}
	return byID
}

// coerce converts a raw update value into the native representation of the
// target type. Values already in shape pass through unchanged.
func coerce(value interface{}, target FieldType) (interface{}, error) {
	switch target {
	case TypeInteger:
		return coerceInteger(value)
	case TypeFloat:
		return coerceFloat(value)
	case TypeString:
		return coerceString(value)
	case TypeBoolean:
		return coerceBoolean(value)
	case TypeImage:
		return coerceImageName(value)
	case TypeImageCollection:
		return coerceImageNames(value)
	case TypeCollection:
		if list, ok := value.([]interface{}); ok {
			return list, nil
		}
		return nil, fmt.Errorf("expected a list")
	case TypeBoard:
		return coerceBoardID(value)
	case TypeModel:
		if m, ok := value.(map[string]interface{}); ok {
			return m, nil
		}
		return nil, fmt.Errorf("expected an object")
	case TypeObject:
		return value, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", target)
	}
}

func coerceInteger(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return int64(f), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected a number or numeric string")
	}
}

func coerceFloat(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Float64()
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return nil, fmt.Errorf("expected a number or numeric string")
	}
}

func coerceString(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return nil, fmt.Errorf("expected a scalar value")
	}
}

func coerceBoolean(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return f != 0, nil
	default:
		return nil, fmt.Errorf("expected a boolean")
	}
}

func coerceImageName(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		if name, ok := v["image_name"].(string); ok {
			return name, nil
		}
		return "", fmt.Errorf("object carries no image_name")
	default:
		return "", fmt.Errorf("expected an image name")
	}
}

func coerceImageNames(value interface{}) (interface{}, error) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of image names")
	}
	names := make([]string, 0, len(list))
	for i, entry := range list {
		name, err := coerceImageName(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %v", i, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func coerceBoardID(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		if id, ok := v["board_id"].(string); ok {
			return id, nil
		}
		return "", fmt.Errorf("object carries no board_id")
	default:
		return "", fmt.Errorf("expected a board reference")
	}
}

// graphShape converts a coerced value into the shape the graph
// representation stores for the target type. Reference types are wrapped;
// everything else passes through.
func graphShape(value interface{}, target FieldType) interface{} {
	switch target {
	case TypeImage:
		return map[string]interface{}{"image_name": value}
	case TypeImageCollection:
		names := value.([]string)
		wrapped := make([]interface{}, 0, len(names))
		for _, name := range names {
			wrapped = append(wrapped, map[string]interface{}{"image_name": name})
		}
		return wrapped
	case TypeBoard:
		return map[string]interface{}{"board_id": value}
	default:
		return value
	}
}
