package jobs

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestReceiptRenderTaskRoundTrip(t *testing.T) {
	task, err := NewReceiptRenderTask(ReceiptRenderPayload{ReciboID: "5b0d6b4e-2d9e-4a51-9f0d-0b1f5a2b7c11"})
	require.NoError(t, err)
	require.Equal(t, TaskReceiptRender, task.Type())

	payload, err := DecodeReceiptRenderPayload(task)
	require.NoError(t, err)
	require.Equal(t, "5b0d6b4e-2d9e-4a51-9f0d-0b1f5a2b7c11", payload.ReciboID)
}

func TestReceiptRenderTaskRequiresID(t *testing.T) {
	_, err := NewReceiptRenderTask(ReceiptRenderPayload{ReciboID: " "})
	require.Error(t, err)

	_, err = DecodeReceiptRenderPayload(asynq.NewTask(TaskReceiptRender, []byte(`{}`)))
	require.Error(t, err)

	_, err = DecodeReceiptRenderPayload(asynq.NewTask(TaskReceiptRender, []byte(`not-json`)))
	require.Error(t, err)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{})
	require.Error(t, err)
}

type fakeInspector struct {
	queue   *asynq.QueueInfo
	task    *asynq.TaskInfo
	taskErr error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return f.queue, nil
}

func (f fakeInspector) GetTaskInfo(string, string) (*asynq.TaskInfo, error) {
	return f.task, f.taskErr
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerHealthWithoutInspector(t *testing.T) {
	rec := serve(NewHandler(nil, nil), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body queueStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, QueueDefault, body.Queue)
	require.Zero(t, body.Pending)
}

func TestHandlerHealthReportsQueue(t *testing.T) {
	rec := serve(NewHandler(fakeInspector{queue: &asynq.QueueInfo{Queue: "default", Pending: 3, Active: 1}}, nil), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body queueStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 3, body.Pending)
	require.Equal(t, 1, body.Active)
}

func TestHandlerTaskStatus(t *testing.T) {
	completed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	inspector := fakeInspector{task: &asynq.TaskInfo{
		ID:          "abc",
		Type:        TaskReceiptRender,
		State:       asynq.TaskStateCompleted,
		CompletedAt: completed,
	}}
	rec := serve(NewHandler(inspector, nil), "/tasks/abc")
	require.Equal(t, http.StatusOK, rec.Code)
	var body taskStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "completed", body.State)
	require.NotNil(t, body.Completed)
	require.True(t, completed.Equal(*body.Completed))
}

func TestHandlerTaskNotFound(t *testing.T) {
	rec := serve(NewHandler(fakeInspector{taskErr: asynq.ErrTaskNotFound}, nil), "/tasks/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(NewHandler(fakeInspector{taskErr: errors.New("redis down")}, nil), "/tasks/x")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
