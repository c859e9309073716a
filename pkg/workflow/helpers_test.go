package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testPayloadJSON is a trimmed enqueue_batch payload: five graph nodes, the
// matching workflow node definitions, and a form exposing one field per
// node. Two fields share the name "value" so duplicate resolution is
// exercised, n4 exposes a board input that the graph omits (the "Auto"
// board case), and n5 carries an image collection.
const testPayloadJSON = `{
  "prepend": false,
  "batch": {
    "graph": {
      "id": "template-graph",
      "nodes": {
        "n1": {"id": "n1", "type": "integer", "value": 20},
        "n2": {"id": "n2", "type": "string", "prompt": "a dog"},
        "n3": {"id": "n3", "type": "integer", "value": 7},
        "n4": {"id": "n4", "type": "save_image"},
        "n5": {"id": "n5", "type": "image_batch", "images": [{"image_name": "a.png"}]}
      },
      "edges": []
    },
    "workflow": {
      "nodes": [
        {"id": "n1", "data": {"inputs": {"value": {"label": "Num Steps", "value": 20}}}},
        {"id": "n2", "data": {"inputs": {"prompt": {"label": "", "value": "a dog"}}}},
        {"id": "n3", "data": {"inputs": {"value": {"label": "Seed", "value": 7}}}},
        {"id": "n4", "data": {"inputs": {"board": {"label": "Output Board", "value": "auto"}}}},
        {"id": "n5", "data": {"inputs": {"images": {"label": "Batch Images", "value": []}}}}
      ],
      "form": {
        "rootElementId": "root",
        "elements": {
          "root": {"id": "root", "type": "container", "data": {"children": ["e1", "e2", "e3", "e4", "e5"]}},
          "e1": {"id": "e1", "type": "node-field", "data": {"fieldIdentifier": {"nodeId": "n1", "fieldName": "value"}, "settings": {"type": "integer-field-config"}}},
          "e2": {"id": "e2", "type": "node-field", "data": {"fieldIdentifier": {"nodeId": "n2", "fieldName": "prompt"}}},
          "e3": {"id": "e3", "type": "node-field", "data": {"fieldIdentifier": {"nodeId": "n3", "fieldName": "value"}}},
          "e4": {"id": "e4", "type": "node-field", "data": {"fieldIdentifier": {"nodeId": "n4", "fieldName": "board"}}},
          "e5": {"id": "e5", "type": "node-field", "data": {"fieldIdentifier": {"nodeId": "n5", "fieldName": "images"}}}
        }
      }
    }
  },
  "runs": 1
}`

func testDocument(t *testing.T) Document {
	t.Helper()
	doc, err := ParseDocument([]byte(testPayloadJSON))
	require.NoError(t, err)
	return doc
}

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	processor, err := NewProcessor(testDocument(t), nil)
	require.NoError(t, err)
	return processor
}

func graphNode(t *testing.T, doc Document, nodeID string) map[string]interface{} {
	t.Helper()
	node, ok := doc.graphNodes()[nodeID].(map[string]interface{})
	require.True(t, ok, "graph node %s", nodeID)
	return node
}

func workflowInputValue(t *testing.T, doc Document, nodeID, fieldName string) interface{} {
	t.Helper()
	for _, raw := range doc.workflowNodes() {
		node, _ := raw.(map[string]interface{})
		if node == nil || node["id"] != nodeID {
			continue
		}
		input, ok := childMap(node, "data", "inputs")[fieldName].(map[string]interface{})
		require.True(t, ok, "workflow input %s.%s", nodeID, fieldName)
		return input["value"]
	}
	t.Fatalf("workflow node %s not found", nodeID)
	return nil
}
