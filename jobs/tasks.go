package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReceiptRender renders a receipt and stores the PDF.
	TaskReceiptRender = "recibo:render"
)

// ReceiptRenderPayload identifies the receipt to render.
type ReceiptRenderPayload struct {
	ReciboID string `json:"recibo_id"`
}

// NewReceiptRenderTask constructs an Asynq task.
func NewReceiptRenderTask(payload ReceiptRenderPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.ReciboID) == "" {
		return nil, fmt.Errorf("jobs: recibo_id required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptRender, data), nil
}

// DecodeReceiptRenderPayload parses a task payload.
func DecodeReceiptRenderPayload(t *asynq.Task) (ReceiptRenderPayload, error) {
	var payload ReceiptRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return ReceiptRenderPayload{}, fmt.Errorf("jobs: decode %s payload: %w", t.Type(), err)
	}
	if strings.TrimSpace(payload.ReciboID) == "" {
		return ReceiptRenderPayload{}, fmt.Errorf("jobs: %s payload missing recibo_id", t.Type())
	}
	return payload, nil
}
