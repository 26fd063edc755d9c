package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edupro-navigator/internal/models"
	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
	"github.com/noah-isme/edupro-navigator/pkg/export"
	"github.com/noah-isme/edupro-navigator/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

type exportAssessmentReader interface {
	List(ctx context.Context, userID, classID string) ([]models.Assessment, error)
}

type exportHistoryReader interface {
	List(ctx context.Context, userID string, types ...models.HistoryType) ([]models.HistoryEntry, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders assessment and history reports to signed files.
type ExportService struct {
	assessments exportAssessmentReader
	history     exportHistoryReader
	storage     fileStorage
	signer      *storage.SignedURLSigner
	renderers   map[models.ExportFormat]reportRenderer
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(assessments exportAssessmentReader, history exportHistoryReader, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		assessments: assessments,
		history:     history,
		storage:     files,
		signer:      signer,
		renderers: map[models.ExportFormat]reportRenderer{
			models.ExportCSV: export.NewCSVExporter(),
			models.ExportPDF: export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate renders the requested report and returns a signed download link.
func (s *ExportService) Generate(ctx context.Context, userID string, req models.ExportRequest) (*models.ExportResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "export")
	}

	report, err := s.buildReport(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	renderer, ok := s.renderers[req.Format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", req.Format))
	}
	payload, err := renderer.Render(report)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	fileName := fmt.Sprintf("%s_%s.%s", req.Kind, time.Now().UTC().Format("20060102_150405"), req.Format)
	relPath, err := s.storage.Save(path.Join(userID, fileName), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(userID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("export generated", zap.String("user_id", userID), zap.String("kind", string(req.Kind)), zap.String("format", string(req.Format)))
	return &models.ExportResult{
		Token:       token,
		DownloadURL: fmt.Sprintf("%s/exports/download?token=%s", prefix, token),
		FileName:    fileName,
		ExpiresAt:   expiresAt,
	}, nil
}

// Open validates a download token for userID and opens the stored file.
func (s *ExportService) Open(userID, token string) (*os.File, string, error) {
	if err := requireUser(userID); err != nil {
		return nil, "", err
	}
	grant, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export link is invalid or expired")
	}
	if grant.OwnerID != userID {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "export belongs to another user")
	}
	file, err := s.storage.Open(grant.Path)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	return file, path.Base(grant.Path), nil
}

// Cleanup removes exports older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildReport(ctx context.Context, userID string, req models.ExportRequest) (export.Report, error) {
	switch req.Kind {
	case models.ExportAssessments:
		items, err := s.assessments.List(ctx, userID, req.ClassID)
		if err != nil {
			return export.Report{}, err
		}
		return assessmentReport(items), nil
	case models.ExportHistory:
		items, err := s.history.List(ctx, userID)
		if err != nil {
			return export.Report{}, err
		}
		return historyReport(items), nil
	default:
		return export.Report{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export %s", req.Kind))
	}
}

func assessmentReport(items []models.Assessment) export.Report {
	rows := make([][]string, 0, len(items))
	var scores []models.StudentScore
	for _, a := range items {
		scores = append(scores, a.Scores...)
		tiers := Tiers(a.Scores)
		rows = append(rows, []string{
			a.CreatedAt.UTC().Format("2006-01-02"),
			string(a.Type),
			a.Title,
			a.Subject,
			fmt.Sprintf("%d", len(a.Scores)),
			fmt.Sprintf("%.2f", a.Average),
			fmt.Sprintf("%d/%d/%d", tiers.Tier1, tiers.Tier2, tiers.Tier3),
		})
	}
	return export.Report{
		Title: "Assessment Report",
		Summary: []export.SummaryLine{
			{Label: "Assessments", Value: fmt.Sprintf("%d", len(items))},
			{Label: "Mean of averages", Value: fmt.Sprintf("%.2f", Average(items, func(a models.Assessment) float64 { return a.Average }))},
			{Label: "Students scored", Value: fmt.Sprintf("%d", len(scores))},
		},
		Headers: []string{"Date", "Type", "Title", "Subject", "Students", "Average", "Tier 1/2/3"},
		Rows:    rows,
	}
}

func historyReport(items []models.HistoryEntry) export.Report {
	rows := make([][]string, 0, len(items))
	for _, h := range items {
		rows = append(rows, []string{
			h.CreatedAt.UTC().Format(time.RFC3339),
			string(h.Type),
			h.Label,
			fmt.Sprintf("%.2f", h.Metric),
		})
	}
	return export.Report{
		Title: "Growth History",
		Summary: []export.SummaryLine{
			{Label: "Entries", Value: fmt.Sprintf("%d", len(items))},
		},
		Headers: []string{"Date", "Type", "Label", "Metric"},
		Rows:    rows,
	}
}
