package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/config"
	"github.com/nurpe/marketplace-service/internal/model"
)

type fakeReportStore struct {
	profession *model.ProfessionTotal
	clients    []model.ClientTotal
	gotLimit   int
	gotFrom    time.Time
	gotTo      time.Time
}

func (f *fakeReportStore) BestProfession(_ context.Context, from, to time.Time) (*model.ProfessionTotal, error) {
	f.gotFrom, f.gotTo = from, to
	if f.profession == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.profession, nil
}

func (f *fakeReportStore) BestClients(_ context.Context, from, to time.Time, limit int) ([]model.ClientTotal, error) {
	f.gotFrom, f.gotTo, f.gotLimit = from, to, limit
	if limit < len(f.clients) {
		return f.clients[:limit], nil
	}
	return f.clients, nil
}

type fakeRenderer struct {
	got model.ClientsReport
}

func (f *fakeRenderer) Generate(report model.ClientsReport) ([]byte, error) {
	f.got = report
	return []byte("rendered"), nil
}

func newReportService(store ReportStore, excel, pdf ReportRenderer) *ReportService {
	cfg := &config.Config{Reports: config.ReportsConfig{DefaultClientsLimit: 2, MaxClientsLimit: 10}}
	return NewReportService(store, excel, pdf, cfg)
}

func may2026() ReportWindow {
	return ReportWindow{
		Start: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestBestProfessionNotFound(t *testing.T) {
	svc := newReportService(&fakeReportStore{}, nil, nil)
	if _, err := svc.BestProfession(context.Background(), may2026()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBestClientsDefaultsAndBounds(t *testing.T) {
	store := &fakeReportStore{clients: []model.ClientTotal{
		{FullName: "A A", Paid: decimal.NewFromInt(30)},
		{FullName: "B B", Paid: decimal.NewFromInt(20)},
		{FullName: "C C", Paid: decimal.NewFromInt(10)},
	}}
	svc := newReportService(store, nil, nil)

	clients, err := svc.BestClients(context.Background(), may2026(), 0)
	if err != nil {
		t.Fatalf("best clients: %v", err)
	}
	if store.gotLimit != 2 || len(clients) != 2 {
		t.Fatalf("default limit not applied: limit=%d len=%d", store.gotLimit, len(clients))
	}

	if _, err := svc.BestClients(context.Background(), may2026(), 3); err != nil || store.gotLimit != 3 {
		t.Fatalf("explicit limit: err=%v limit=%d", err, store.gotLimit)
	}
	for _, limit := range []int{-1, 11} {
		if _, err := svc.BestClients(context.Background(), may2026(), limit); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("limit %d: expected ErrInvalidInput, got %v", limit, err)
		}
	}
}

func TestReportWindowValidation(t *testing.T) {
	svc := newReportService(&fakeReportStore{}, nil, nil)
	reversed := ReportWindow{Start: may2026().End, End: may2026().Start}

	if _, err := svc.BestClients(context.Background(), reversed, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for reversed window, got %v", err)
	}
	if _, err := svc.BestProfession(context.Background(), ReportWindow{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty window, got %v", err)
	}
}

func TestReportWindowNormalizesToUTC(t *testing.T) {
	store := &fakeReportStore{}
	svc := newReportService(store, nil, nil)
	zone := time.FixedZone("UTC+5", 5*60*60)
	window := ReportWindow{
		Start: time.Date(2026, 5, 1, 5, 0, 0, 0, zone),
		End:   time.Date(2026, 5, 2, 5, 0, 0, 0, zone),
	}

	if _, err := svc.BestClients(context.Background(), window, 0); err != nil {
		t.Fatalf("best clients: %v", err)
	}
	if store.gotFrom.Location() != time.UTC || !store.gotFrom.Equal(window.Start) {
		t.Fatalf("unexpected from: %v", store.gotFrom)
	}
}

func TestExportClientsReport(t *testing.T) {
	store := &fakeReportStore{
		profession: &model.ProfessionTotal{Profession: "Programmer", Total: decimal.NewFromInt(300)},
		clients:    []model.ClientTotal{{FullName: "A A", Paid: decimal.NewFromInt(30)}},
	}
	excel := &fakeRenderer{}
	pdf := &fakeRenderer{}
	svc := newReportService(store, excel, pdf)

	result, err := svc.ExportClientsReport(context.Background(), ExportReportInput{Window: may2026(), Format: ExportFormatPDF})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.FileName != "best-clients-20260501-20260531.pdf" {
		t.Fatalf("file name: %q", result.FileName)
	}
	if result.ContentType != "application/pdf" || string(result.Content) != "rendered" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if pdf.got.BestProfession == nil || len(pdf.got.Clients) != 1 {
		t.Fatalf("renderer got incomplete report: %+v", pdf.got)
	}

	store.profession = nil
	result, err = svc.ExportClientsReport(context.Background(), ExportReportInput{Window: may2026(), Format: ExportFormatXLSX})
	if err != nil {
		t.Fatalf("export without profession: %v", err)
	}
	if !strings.HasSuffix(result.FileName, ".xlsx") || excel.got.BestProfession != nil {
		t.Fatalf("unexpected xlsx export: name=%q profession=%v", result.FileName, excel.got.BestProfession)
	}

	if _, err := svc.ExportClientsReport(context.Background(), ExportReportInput{Window: may2026(), Format: "csv"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for csv, got %v", err)
	}
}
