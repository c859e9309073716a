package node

import (
	"go.uber.org/zap"

	"github.com/dwringer/workflow-processor-node/pkg/enqueue"
	"github.com/dwringer/workflow-processor-node/pkg/storage"
)

// NewDefaultRegistry creates a registry with every executor the plugin
// ships.
func NewDefaultRegistry(store storage.TemplateStore, client *enqueue.Client, logger *zap.Logger) *Registry {
	registry := NewRegistry()
	registry.Register(NewEnqueueExecutor(store, client, logger))
	registry.Register(NewFieldListExecutor(logger))
	return registry
}
