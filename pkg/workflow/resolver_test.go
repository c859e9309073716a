package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDuplicateKeysBindInFormOrder(t *testing.T) {
	processor := testProcessor(t)

	bindings, err := processor.resolve([]Update{{"value": 1}, {"value": 2}})
	require.NoError(t, err)
	require.Len(t, bindings, 2)

	assert.Equal(t, "n1", bindings[0].field.NodeID)
	assert.Equal(t, 1, bindings[0].value)
	assert.Equal(t, "n3", bindings[1].field.NodeID)
	assert.Equal(t, 2, bindings[1].value)
}

func TestResolveMixedNameAndLabelShareConsumption(t *testing.T) {
	processor := testProcessor(t)

	// "Seed" is n3's label; the following "value" must fall through to n1
	// because n3 is already consumed.
	bindings, err := processor.resolve([]Update{{"Seed": 9}, {"value": 30}})
	require.NoError(t, err)
	require.Len(t, bindings, 2)

	assert.Equal(t, "n3", bindings[0].field.NodeID)
	assert.Equal(t, "n1", bindings[1].field.NodeID)
}

func TestResolveExhaustedField(t *testing.T) {
	processor := testProcessor(t)

	_, err := processor.resolve([]Update{{"value": 1}, {"value": 2}, {"value": 3}})
	var exhausted *ExhaustedFieldError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "value", exhausted.Key)
	assert.Equal(t, 2, exhausted.Index)
	assert.Equal(t, 2, exhausted.Matches)
}

func TestResolveUnknownField(t *testing.T) {
	processor := testProcessor(t)

	_, err := processor.resolve([]Update{{"bogus": 1}})
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "bogus", unknown.Key)
}

func TestResolveMalformedUpdate(t *testing.T) {
	processor := testProcessor(t)

	tests := []struct {
		name string
		item Update
	}{
		{"empty item", Update{}},
		{"two keys", Update{"value": 1, "prompt": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processor.resolve([]Update{tt.item})
			var malformed *MalformedUpdateError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestResolveLabelIsCaseAndSpaceInsensitive(t *testing.T) {
	processor := testProcessor(t)

	for _, key := range []string{"Num Steps", "num_steps", "NUM_STEPS", "num steps"} {
		t.Run(key, func(t *testing.T) {
			bindings, err := processor.resolve([]Update{{key: 25}})
			require.NoError(t, err)
			require.Len(t, bindings, 1)
			assert.Equal(t, "n1", bindings[0].field.NodeID)
			assert.Equal(t, "value", bindings[0].field.FieldName)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "num_steps", normalizeKey("Num Steps"))
	assert.Equal(t, "num_steps", normalizeKey("NUM_STEPS"))
	assert.Equal(t, "main_prompt", normalizeKey("Main prompt"))
}
