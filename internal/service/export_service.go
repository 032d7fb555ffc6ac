package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/phonebook-api/internal/models"
	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
	"github.com/noah-isme/phonebook-api/pkg/export"
	"github.com/noah-isme/phonebook-api/pkg/paging"
)

const exportBatchSize = 200

var exportHeaders = []string{"ID", "Name", "Email", "Details", "Zodiac"}

type contactPager interface {
	FindPage(ctx context.Context, q paging.Query) ([]models.Contact, error)
}

// ExportResult is a rendered directory document.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
	Rows        int
}

// ExportService renders the whole phone book for download.
type ExportService struct {
	repo      contactPager
	renderers map[string]export.Renderer
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an export service serving the given renderers by extension.
func NewExportService(repo contactPager, logger *zap.Logger, renderers ...export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	byExt := make(map[string]export.Renderer, len(renderers))
	for _, r := range renderers {
		byExt[r.Extension()] = r
	}
	return &ExportService{repo: repo, renderers: byExt, batchSize: exportBatchSize, logger: logger, now: time.Now}
}

// Export renders every contact, sorted by name, in the requested format.
func (s *ExportService) Export(ctx context.Context, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	dataset := export.Dataset{Title: "Phone Book", Headers: exportHeaders}
	for firstRow := 0; ; firstRow += s.batchSize {
		q, err := paging.Map(firstRow, s.batchSize, true, "name")
		if err != nil {
			return nil, err
		}
		contacts, err := s.repo.FindPage(ctx, q)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read contacts for export")
		}
		for _, c := range contacts {
			view := NewContactView(c)
			dataset.Rows = append(dataset.Rows, map[string]string{
				"ID":      strconv.FormatInt(c.ID, 10),
				"Name":    c.Name,
				"Email":   c.Email,
				"Details": view.Details,
				"Zodiac":  string(view.ZodiacSign),
			})
		}
		if len(contacts) < s.batchSize {
			break
		}
	}

	content, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("phone book exported", zap.String("format", format), zap.Int("rows", len(dataset.Rows)))

	return &ExportResult{
		Filename:    fmt.Sprintf("phonebook-%s.%s", s.now().UTC().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
		Rows:        len(dataset.Rows),
	}, nil
}
