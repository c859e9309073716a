package workflow

import "fmt"

// StructureError reports a workflow payload whose form or graph sections do
// not have the shape the processor depends on. It is fatal for the whole
// call.
type StructureError struct {
	Message string
	Cause   error
}

func (e *StructureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("workflow structure: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("workflow structure: %s", e.Message)
}

func (e *StructureError) Unwrap() error { return e.Cause }

func newStructureError(format string, args ...interface{}) *StructureError {
	return &StructureError{Message: fmt.Sprintf(format, args...)}
}

// MalformedUpdateError reports an update item that is not a single
// key-value pair.
type MalformedUpdateError struct {
	// Index is the item's position in the update list.
	Index int
	// Keys is the number of keys the item carried.
	Keys int
}

func (e *MalformedUpdateError) Error() string {
	return fmt.Sprintf("update item %d is malformed: expected a single key-value pair, got %d keys", e.Index, e.Keys)
}

// UnknownFieldError reports an update key that matches no exposed field by
// name or label.
type UnknownFieldError struct {
	Key   string
	Index int
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("update item %d: %q is not an exposed field name or label in this workflow", e.Index, e.Key)
}

// ExhaustedFieldError reports an update list supplying more occurrences of a
// key than the workflow has matching fields.
type ExhaustedFieldError struct {
	Key string
	// Index is the position of the update that could not be bound.
	Index int
	// Matches is how many fields share the key, all already bound.
	Matches int
}

func (e *ExhaustedFieldError) Error() string {
	return fmt.Sprintf("update item %d: all %d fields matching %q already have a value assigned", e.Index, e.Matches, e.Key)
}

// CoercionError reports a value that cannot be converted to its field's
// native type.
type CoercionError struct {
	// Key is the update key as the caller supplied it.
	Key       string
	NodeID    string
	FieldName string
	Value     interface{}
	Target    FieldType
	Cause     error
}

func (e *CoercionError) Error() string {
	base := fmt.Sprintf("field %q (node %q, input %q): value %v (%T) cannot be coerced to %s",
		e.Key, e.NodeID, e.FieldName, e.Value, e.Value, e.Target)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *CoercionError) Unwrap() error { return e.Cause }
