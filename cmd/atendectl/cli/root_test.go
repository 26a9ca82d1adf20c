package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/atende-erp/atende/internal/historico"
	"github.com/atende-erp/atende/internal/recibos"
)

const receiptID = "7f1c0f7e-0b59-4a43-9a63-3f0c5f7e2c11"

type fakeReceipts struct {
	renderedID string
	offline    recibos.Receipt
	err        error
}

func (f *fakeReceipts) Render(_ context.Context, id string) (recibos.Artifact, error) {
	f.renderedID = id
	if f.err != nil {
		return recibos.Artifact{}, f.err
	}
	return recibos.Artifact{Filename: "recibo-42.pdf", Data: []byte("%PDF-1.4 stored")}, nil
}

func (f *fakeReceipts) RenderReceipt(_ context.Context, r recibos.Receipt) (recibos.Artifact, error) {
	f.offline = r
	return recibos.Artifact{Filename: "recibo-" + r.Numero + ".pdf", Data: []byte("%PDF-1.4 offline")}, nil
}

type fakeHistory struct {
	filters historico.Filters
	items   []historico.Item
}

func (f *fakeHistory) Load(_ context.Context, filters historico.Filters) ([]historico.Item, error) {
	f.filters = filters
	return f.items, nil
}

type fakeJobs struct {
	enqueued string
}

func (f *fakeJobs) EnqueueReceipt(_ context.Context, id string) (*asynq.TaskInfo, error) {
	f.enqueued = id
	return &asynq.TaskInfo{ID: "task-1", Queue: "default"}, nil
}

func (f *fakeJobs) InspectQueue(context.Context) (QueueStats, error) {
	return QueueStats{Queue: "default", Pending: 3, Retry: 1}, nil
}

func run(t *testing.T, f Factory, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(f)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func receiptsFactory(r *fakeReceipts) func(context.Context) (Receipts, func(), error) {
	return func(context.Context) (Receipts, func(), error) { return r, nil, nil }
}

func TestRenderCommandWritesFile(t *testing.T) {
	receipts := &fakeReceipts{}
	out := filepath.Join(t.TempDir(), "nested", "r.pdf")

	stdout, err := run(t, Factory{Receipts: receiptsFactory(receipts)}, "render", "--id", receiptID, "--out", out)
	require.NoError(t, err)
	require.Equal(t, receiptID, receipts.renderedID)
	require.Contains(t, stdout, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 stored", string(data))
}

func TestRenderCommandValidatesID(t *testing.T) {
	receipts := &fakeReceipts{}
	_, err := run(t, Factory{Receipts: receiptsFactory(receipts)}, "render", "--id", "42")
	require.ErrorContains(t, err, "invalid --id")
	require.Empty(t, receipts.renderedID)
}

func TestRenderCommandPropagatesErrors(t *testing.T) {
	receipts := &fakeReceipts{err: recibos.ErrNotFound}
	_, err := run(t, Factory{Receipts: receiptsFactory(receipts)}, "render", "--id", receiptID, "--out", filepath.Join(t.TempDir(), "x.pdf"))
	require.True(t, errors.Is(err, recibos.ErrNotFound))
}

func TestRenderJSONCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "recibo.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"numero_recibo": "77",
		"valor": "150.00",
		"dados_empresa": {"nome": "Clínica Aurora"},
		"dados_cliente": {"nome": "João"},
		"created_at": "2025-03-10T12:00:00Z"
	}`), 0o600))
	receipts := &fakeReceipts{}
	out := filepath.Join(dir, "out.pdf")

	_, err := run(t, Factory{OfflineReceipts: receiptsFactory(receipts)}, "render-json", "--file", file, "--out", out)
	require.NoError(t, err)
	require.Equal(t, "77", receipts.offline.Numero)
	require.Equal(t, "150", receipts.offline.Valor.String())
	require.FileExists(t, out)
}

func TestRenderJSONCommandRejectsBadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{`), 0o600))
	_, err := run(t, Factory{OfflineReceipts: receiptsFactory(&fakeReceipts{})}, "render-json", "--file", file)
	require.ErrorContains(t, err, "decode receipt")
}

func TestHistoricoCommand(t *testing.T) {
	consultor := uuid.New()
	history := &fakeHistory{items: []historico.Item{{ConsultorNome: "Ana"}}}
	f := Factory{History: func(context.Context) (History, func(), error) { return history, nil, nil }}

	stdout, err := run(t, f, "historico", "--consultor", consultor.String())
	require.NoError(t, err)
	require.NotNil(t, history.filters.ConsultorID)
	require.Equal(t, consultor, *history.filters.ConsultorID)
	require.Nil(t, history.filters.ClienteID)

	var payload struct {
		Count int              `json:"count"`
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	require.Equal(t, 1, payload.Count)
	require.Equal(t, "Ana", payload.Items[0]["consultor_nome"])
}

func TestHistoricoCommandRejectsBadFilter(t *testing.T) {
	f := Factory{History: func(context.Context) (History, func(), error) { return &fakeHistory{}, nil, nil }}
	_, err := run(t, f, "historico", "--cliente", "nope")
	require.ErrorContains(t, err, "invalid --cliente")
}

func TestEnqueueAndQueueCommands(t *testing.T) {
	client := &fakeJobs{}
	released := 0
	f := Factory{Jobs: func(context.Context) (Jobs, func(), error) {
		return client, func() { released++ }, nil
	}}

	stdout, err := run(t, f, "enqueue", "--id", receiptID)
	require.NoError(t, err)
	require.Equal(t, receiptID, client.enqueued)
	require.JSONEq(t, `{"task_id":"task-1","queue":"default"}`, stdout)

	stdout, err = run(t, f, "queue")
	require.NoError(t, err)
	require.Contains(t, stdout, `"pending": 3`)
	require.Equal(t, 2, released)
}

func TestMissingFactory(t *testing.T) {
	_, err := run(t, Factory{}, "queue")
	require.ErrorContains(t, err, "not available")
}
