package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/config"
	"github.com/nurpe/marketplace-service/internal/model"
)

type ReportStore interface {
	BestProfession(ctx context.Context, from, to time.Time) (*model.ProfessionTotal, error)
	BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientTotal, error)
}

type ReportRenderer interface {
	Generate(report model.ClientsReport) ([]byte, error)
}

type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

type ReportService struct {
	repo         ReportStore
	renderers    map[ExportFormat]ReportRenderer
	defaultLimit int
	maxLimit     int
}

type ReportWindow struct {
	Start time.Time
	End   time.Time
}

type ExportReportInput struct {
	Window ReportWindow
	Limit  int
	Format ExportFormat
}

type ExportReportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func NewReportService(repo ReportStore, excel, pdf ReportRenderer, cfg *config.Config) *ReportService {
	return &ReportService{
		repo: repo,
		renderers: map[ExportFormat]ReportRenderer{
			ExportFormatXLSX: excel,
			ExportFormatPDF:  pdf,
		},
		defaultLimit: cfg.Reports.DefaultClientsLimit,
		maxLimit:     cfg.Reports.MaxClientsLimit,
	}
}

// BestProfession returns the profession with the highest paid total in the
// window. Equal totals resolve alphabetically.
func (s *ReportService) BestProfession(ctx context.Context, window ReportWindow) (*model.ProfessionTotal, error) {
	from, to, err := window.bounds()
	if err != nil {
		return nil, err
	}
	best, err := s.repo.BestProfession(ctx, from, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, internal(err)
	}
	return best, nil
}

// BestClients returns the top clients by paid total. A zero limit means the
// configured default.
func (s *ReportService) BestClients(ctx context.Context, window ReportWindow, limit int) ([]model.ClientTotal, error) {
	from, to, err := window.bounds()
	if err != nil {
		return nil, err
	}
	limit, err = s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.BestClients(ctx, from, to, limit)
	if err != nil {
		return nil, internal(err)
	}
	return clients, nil
}

func (s *ReportService) ExportClientsReport(ctx context.Context, input ExportReportInput) (*ExportReportResult, error) {
	renderer, ok := s.renderers[input.Format]
	if !ok || renderer == nil {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, input.Format)
	}

	clients, err := s.BestClients(ctx, input.Window, input.Limit)
	if err != nil {
		return nil, err
	}
	profession, err := s.BestProfession(ctx, input.Window)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	report := model.ClientsReport{
		PeriodStart:    input.Window.Start.UTC(),
		PeriodEnd:      input.Window.End.UTC(),
		BestProfession: profession,
		Clients:        clients,
	}
	content, err := renderer.Generate(report)
	if err != nil {
		return nil, internal(err)
	}

	return &ExportReportResult{
		FileName:    buildFileName(report, input.Format),
		ContentType: contentType(input.Format),
		Content:     content,
	}, nil
}

func (s *ReportService) resolveLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return s.defaultLimit, nil
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	case limit > s.maxLimit:
		return 0, fmt.Errorf("%w: limit must not exceed %d", ErrInvalidInput, s.maxLimit)
	default:
		return limit, nil
	}
}

func (w ReportWindow) bounds() (time.Time, time.Time, error) {
	if w.Start.IsZero() || w.End.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}
	from, to := w.Start.UTC(), w.End.UTC()
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return from, to, nil
}

func buildFileName(report model.ClientsReport, format ExportFormat) string {
	period := fmt.Sprintf("%s-%s", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return fmt.Sprintf("best-clients-%s.%s", period, format)
}

func contentType(format ExportFormat) string {
	switch format {
	case ExportFormatPDF:
		return "application/pdf"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}
