// Package node exposes the plugin's operations as executable nodes for a
// node-based host: each executor takes a JSON settings block and returns a
// JSON output block.
package node

import (
	"context"
	"encoding/json"
	"fmt"
)

// Config carries everything an executor needs for a single invocation.
type Config struct {
	NodeID   string
	Kind     string
	Settings json.RawMessage
}

// Executor runs one kind of node.
type Executor interface {
	// Execute runs the node and returns its serialized output.
	Execute(ctx context.Context, config Config) ([]byte, error)

	// Kind returns the node kind this executor handles.
	Kind() string
}

// Registry dispatches invocations to the executor registered for the
// node's kind.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]Executor),
	}
}

// Register adds an executor, replacing any previous one for the same kind.
func (r *Registry) Register(executor Executor) {
	r.executors[executor.Kind()] = executor
}

// Execute runs the node with the executor registered for its kind.
func (r *Registry) Execute(ctx context.Context, config Config) ([]byte, error) {
	executor, ok := r.executors[config.Kind]
	if !ok {
		return nil, fmt.Errorf("no executor registered for node kind: %s", config.Kind)
	}
	return executor.Execute(ctx, config)
}

// HasExecutor checks whether an executor exists for a kind.
func (r *Registry) HasExecutor(kind string) bool {
	_, ok := r.executors[kind]
	return ok
}

// Kinds returns all registered node kinds.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.executors))
	for kind := range r.executors {
		kinds = append(kinds, kind)
	}
	return kinds
}
