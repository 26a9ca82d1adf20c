package perf

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atende-erp/atende/internal/recibos"
	"github.com/atende-erp/atende/internal/recibos/pdf"
)

func sampleReceipt(installments int) recibos.Receipt {
	r := recibos.Receipt{
		ID:        "bench",
		Numero:    "2025-0001",
		Valor:     decimal.RequireFromString("2400.00"),
		Descricao: "Acompanhamento terapêutico semanal com relatório mensal de evolução e reuniões com a família.",
		Empresa: recibos.Company{
			Nome:     "Clínica Aurora Ltda",
			CpfCnpj:  "12.345.678/0001-90",
			Endereco: "Rua dos Andradas, 1000",
			Cidade:   "Porto Alegre",
			Estado:   "RS",
		},
		Cliente:   recibos.Client{Nome: "Maria da Silva", CPF: "123.456.789-00"},
		CreatedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	for i := 1; i <= installments; i++ {
		r.Parcelas = append(r.Parcelas, recibos.Installment{
			Numero:     i,
			Valor:      decimal.RequireFromString("100.00"),
			Vencimento: recibos.NewDate(2025, time.Month((i-1)%12+1), 10),
			Status:     "pendente",
		})
	}
	return r
}

func BenchmarkComposeReceipt(b *testing.B) {
	composer := recibos.NewComposer(pdf.NewMeasurer(), time.UTC)
	r := sampleReceipt(24)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = composer.Compose(r)
	}
}

func BenchmarkRenderReceiptPDF(b *testing.B) {
	composer := recibos.NewComposer(pdf.NewMeasurer(), time.UTC)
	renderer := pdf.NewRenderer()
	doc := composer.Compose(sampleReceipt(24))
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := renderer.Render(ctx, doc); err != nil {
			b.Fatal(err)
		}
	}
}

func TestReceiptRenderLatencyTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("latency sampling skipped in short mode")
	}
	composer := recibos.NewComposer(pdf.NewMeasurer(), time.UTC)
	renderer := pdf.NewRenderer()
	r := sampleReceipt(60)
	ctx := context.Background()

	samples := make([]time.Duration, 0, 20)
	for i := 0; i < 20; i++ {
		start := time.Now()
		if _, err := renderer.Render(ctx, composer.Compose(r)); err != nil {
			t.Fatalf("render: %v", err)
		}
		samples = append(samples, time.Since(start))
	}
	if p95 := percentile95(samples); p95 > 2*time.Second {
		t.Fatalf("receipt render latency regression: p95=%s", p95)
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
