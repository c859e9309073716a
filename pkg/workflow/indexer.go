package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// indexExposedFields parses the form section of a workflow payload into the
// ordered exposed-field sequence. Order follows the root container's
// children list, never the traversal order of any other section.
//
// A missing or malformed individual element is skipped with a warning so
// that one bad element cannot take down the whole parse. Missing structural
// pieces of the form itself are fatal.
func indexExposedFields(doc Document, logger *zap.Logger) ([]ExposedField, error) {
	form := doc.form()
	if form == nil {
		return nil, newStructureError("payload has no batch.workflow.form object")
	}

	elements, _ := form["elements"].(map[string]interface{})
	rootID, _ := form["rootElementId"].(string)
	if elements == nil || rootID == "" {
		return nil, newStructureError("form is missing its elements map or rootElementId")
	}

	root, _ := elements[rootID].(map[string]interface{})
	if root == nil || root["type"] != "container" {
		return nil, newStructureError("root element %q is missing or not a container", rootID)
	}

	children, ok := childMap(root, "data")["children"].([]interface{})
	if !ok {
		return nil, newStructureError("container %q has no data.children list", rootID)
	}

	labels := fieldLabels(doc, logger)
	graphNodes := doc.graphNodes()

	fields := make([]ExposedField, 0, len(children))
	for _, rawID := range children {
		elementID, _ := rawID.(string)
		element, _ := elements[elementID].(map[string]interface{})
		if element == nil {
			logger.Warn("Skipping missing or malformed form element",
				zap.String("element_id", elementID))
			continue
		}
		if element["type"] != "node-field" {
			continue
		}

		data := childMap(element, "data")
		identifier := childMap(data, "fieldIdentifier")
		nodeID, _ := identifier["nodeId"].(string)
		fieldName, _ := identifier["fieldName"].(string)

		fieldType, err := resolveFieldType(data, graphNodes, nodeID, fieldName, elementID, logger)
		if err != nil {
			return nil, err
		}

		if nodeID == "" || fieldName == "" || fieldType == "" {
			return nil, newStructureError("node-field element %q is missing its node id, field name, or type", elementID)
		}

		fields = append(fields, ExposedField{
			NodeID:    nodeID,
			FieldName: fieldName,
			Type:      fieldType,
			ElementID: elementID,
			Label:     labels[nodeID][fieldName],
		})
	}
	return fields, nil
}

// resolveFieldType determines a field's type with a fixed precedence:
// explicit settings metadata, then the shape of the field's current graph
// value, then a name heuristic, and finally the generic object type with a
// warning.
func resolveFieldType(data, graphNodes map[string]interface{}, nodeID, fieldName, elementID string, logger *zap.Logger) (FieldType, error) {
	if settings := childMap(data, "settings"); settings != nil {
		if declared, ok := settings["type"].(string); ok && declared != "" {
			if fieldType, known := settingsTypes[declared]; known {
				return fieldType, nil
			}
			logger.Warn("Unknown settings type on form element, treating field as object",
				zap.String("element_id", elementID),
				zap.String("settings_type", declared))
			return TypeObject, nil
		}
	}

	if nodeID != "" && fieldName != "" {
		if node, ok := graphNodes[nodeID].(map[string]interface{}); ok {
			if value, present := node[fieldName]; present {
				fieldType, err := inferValueType(value)
				if err != nil {
					return "", newStructureError("cannot infer type for field %q on node %q: %v", fieldName, nodeID, err)
				}
				if fieldType != "" {
					return fieldType, nil
				}
			}
		}
	}

	if fieldType := heuristicType(fieldName); fieldType != "" {
		return fieldType, nil
	}

	logger.Warn("Form element has no settings type and no inferable type, treating field as object",
		zap.String("element_id", elementID),
		zap.String("field", fieldName))
	return TypeObject, nil
}

// inferValueType infers a field type from the shape of its graph value.
// An object whose keys match none of the known reference shapes is an
// error; a value of a shape with no mapping at all returns the empty type
// so name heuristics can take over.
func inferValueType(value interface{}) (FieldType, error) {
	switch v := value.(type) {
	case bool:
		return TypeBoolean, nil
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return TypeInteger, nil
		}
		return TypeFloat, nil
	case int, int64:
		return TypeInteger, nil
	case float64:
		return TypeFloat, nil
	case string:
		return TypeString, nil
	case []interface{}:
		if len(v) > 0 {
			if entry, ok := v[0].(map[string]interface{}); ok {
				if _, ok := entry["image_name"]; ok {
					return TypeImageCollection, nil
				}
			}
		}
		return TypeCollection, nil
	case map[string]interface{}:
		if _, ok := v["image_name"]; ok {
			return TypeImage, nil
		}
		if _, ok := v["board_id"]; ok {
			return TypeBoard, nil
		}
		if _, ok := v["hash"]; ok {
			return TypeModel, nil
		}
		return "", fmt.Errorf("unrecognized object shape: %v", v)
	case nil:
		// An unset value carries no shape; string is the safe default.
		return TypeString, nil
	default:
		return "", nil
	}
}

// heuristicType recognizes field names with a conventional type.
func heuristicType(fieldName string) FieldType {
	switch strings.ToLower(fieldName) {
	case "board":
		return TypeBoard
	case "refiner_model":
		return TypeModel
	default:
		return ""
	}
}

// fieldLabels collects the user-facing labels declared on the workflow
// nodes' inputs, keyed by node id then field name. Empty labels are treated
// as absent.
func fieldLabels(doc Document, logger *zap.Logger) map[string]map[string]string {
	labels := make(map[string]map[string]string)
	nodes := doc.workflowNodes()
	if len(nodes) == 0 {
		logger.Warn("batch.workflow.nodes is missing or empty, field labels will not resolve")
		return labels
	}
	for _, raw := range nodes {
		node, _ := raw.(map[string]interface{})
		if node == nil {
			continue
		}
		nodeID, _ := node["id"].(string)
		if nodeID == "" {
			continue
		}
		perNode := make(map[string]string)
		for name, rawInput := range childMap(node, "data", "inputs") {
			input, _ := rawInput.(map[string]interface{})
			if label, ok := input["label"].(string); ok && label != "" {
				perNode[name] = label
			}
		}
		labels[nodeID] = perNode
	}
	return labels
}
