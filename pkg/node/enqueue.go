package node

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dwringer/workflow-processor-node/pkg/enqueue"
	"github.com/dwringer/workflow-processor-node/pkg/storage"
	"github.com/dwringer/workflow-processor-node/pkg/workflow"
)

const tracerName = "workflow-processor-node"

// EnqueueSettings configures one batch submission: which stored template to
// rewrite and the serialized field update list to apply to it.
type EnqueueSettings struct {
	Template string `json:"template"`
	Updates  string `json:"updates,omitempty"`
}

// EnqueueOutput is the serialized result of a submission.
type EnqueueOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// EnqueueExecutor loads a workflow payload template, applies field updates,
// and submits the result to the host's queue API.
type EnqueueExecutor struct {
	store  storage.TemplateStore
	client *enqueue.Client
	logger *zap.Logger
}

// NewEnqueueExecutor creates the executor. A nil logger discards log output.
func NewEnqueueExecutor(store storage.TemplateStore, client *enqueue.Client, logger *zap.Logger) *EnqueueExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnqueueExecutor{store: store, client: client, logger: logger}
}

// Kind returns the node kind this executor handles.
func (e *EnqueueExecutor) Kind() string {
	return "enqueue-workflow-batch"
}

// Execute loads the template, rewrites it, and enqueues the batch.
func (e *EnqueueExecutor) Execute(ctx context.Context, config Config) ([]byte, error) {
	var settings EnqueueSettings
	if err := json.Unmarshal(config.Settings, &settings); err != nil {
		return nil, fmt.Errorf("invalid enqueue settings: %w", err)
	}
	if settings.Template == "" {
		return nil, fmt.Errorf("template name is required")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "enqueue.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("node.id", config.NodeID),
		attribute.String("workflow.template", settings.Template),
	)

	payload, err := e.store.Load(ctx, settings.Template)
	if err != nil {
		return nil, fail(span, err)
	}

	updates, err := workflow.ParseUpdates([]byte(settings.Updates))
	if err != nil {
		return nil, fail(span, err)
	}

	processor, err := workflow.NewProcessorFromJSON(payload, e.logger)
	if err != nil {
		return nil, fail(span, err)
	}

	_, applySpan := otel.Tracer(tracerName).Start(ctx, "enqueue.apply")
	applySpan.SetAttributes(attribute.Int("workflow.update_count", len(updates)))
	doc, err := processor.Apply(updates)
	if err != nil {
		fail(applySpan, err)
		applySpan.End()
		return nil, fail(span, err)
	}
	applySpan.End()

	// Every submission gets its own graph id so the host treats repeats of
	// the same template as distinct queue items.
	doc.RefreshGraphID()

	result, err := e.client.Enqueue(ctx, doc)
	if err != nil {
		return nil, fail(span, err)
	}

	e.logger.Info("Workflow batch enqueued",
		zap.String("node_id", config.NodeID),
		zap.String("template", settings.Template),
		zap.Int("status", result.StatusCode))

	return json.Marshal(EnqueueOutput{
		Status:  "Success",
		Message: result.Message,
	})
}

// fail marks the span failed and passes the error through.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
