package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/phonebook-api/internal/models"
	"github.com/noah-isme/phonebook-api/internal/repository"
	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
	"github.com/noah-isme/phonebook-api/pkg/paging"
	"github.com/noah-isme/phonebook-api/pkg/zodiac"
)

const (
	// DefaultPageSize matches the grid page size.
	DefaultPageSize = 45
	birthDayLayout  = "2006-01-02"
	detailsLayout   = "01-02-2006"
	contactsPattern = "contacts:*"
)

type contactRepository interface {
	FindPage(ctx context.Context, q paging.Query) ([]models.Contact, error)
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id int64) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id int64) error
}

// ListContactsRequest is a grid lazy-load request.
type ListContactsRequest struct {
	FirstRow  int
	PageSize  int
	Ascending bool
	SortField string
}

// ContactRequest is the add/edit form payload.
type ContactRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	BirthDay string `json:"birth_day" validate:"omitempty,datetime=2006-01-02"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// ContactList is one rendered grid page.
type ContactList struct {
	Items      []models.ContactView
	Pagination *models.Pagination
	CacheHit   bool
}

// ContactServiceConfig tunes paging and caching.
type ContactServiceConfig struct {
	PageSize    int
	MaxPageSize int
	CacheTTL    time.Duration
}

// ContactService handles phone book use-cases.
type ContactService struct {
	repo      contactRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ContactServiceConfig
}

// NewContactService constructs the contact service. cache and metrics may be nil.
func NewContactService(repo contactRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ContactServiceConfig) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPageSize < cfg.PageSize {
		cfg.MaxPageSize = cfg.PageSize
	}
	return &ContactService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// List returns the page of contacts containing req.FirstRow.
func (s *ContactService) List(ctx context.Context, req ListContactsRequest) (*ContactList, error) {
	size := req.PageSize
	if size == 0 {
		size = s.cfg.PageSize
	}
	if size > s.cfg.MaxPageSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("page size must not exceed %d", s.cfg.MaxPageSize))
	}
	q, err := paging.Map(req.FirstRow, size, req.Ascending, req.SortField)
	if err != nil {
		return nil, err
	}

	key := pageCacheKey(q)
	var page models.ContactPage
	hit := s.cache.Get(ctx, key, &page)
	if !hit {
		page, err = s.loadPage(ctx, q)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, page, s.cfg.CacheTTL)
	}

	items := make([]models.ContactView, 0, len(page.Contacts))
	for _, c := range page.Contacts {
		items = append(items, NewContactView(c))
	}
	return &ContactList{
		Items: items,
		Pagination: &models.Pagination{
			FirstRow:   q.Offset(),
			Page:       q.PageIndex,
			PageSize:   q.PageSize,
			TotalCount: page.Total,
			SortField:  q.SortField,
			SortOrder:  string(q.Order),
		},
		CacheHit: hit,
	}, nil
}

func (s *ContactService) loadPage(ctx context.Context, q paging.Query) (models.ContactPage, error) {
	contacts, err := s.repo.FindPage(ctx, q)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			return models.ContactPage{}, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, fmt.Sprintf("cannot sort by %q", q.SortField))
		}
		return models.ContactPage{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contacts")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return models.ContactPage{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count contacts")
	}
	s.metrics.SetContactCount(total)
	return models.ContactPage{Contacts: contacts, Total: total}, nil
}

// Count returns the number of stored contacts.
func (s *ContactService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count contacts")
	}
	return total, nil
}

// Get loads a single contact for the edit form.
func (s *ContactService) Get(ctx context.Context, id int64) (*models.ContactView, error) {
	contact, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewContactView(*contact)
	return &view, nil
}

// Create saves a new contact.
func (s *ContactService) Create(ctx context.Context, req ContactRequest) (*models.ContactView, error) {
	contact := &models.Contact{}
	if err := s.apply(contact, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create contact")
	}
	s.afterWrite(ctx, "create", contact.ID)
	view := NewContactView(*contact)
	return &view, nil
}

// Update saves changes to an existing contact.
func (s *ContactService) Update(ctx context.Context, id int64, req ContactRequest) (*models.ContactView, error) {
	contact, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(contact, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, contact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contact not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update contact")
	}
	s.afterWrite(ctx, "update", contact.ID)
	view := NewContactView(*contact)
	return &view, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "contact not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete contact")
	}
	s.afterWrite(ctx, "delete", id)
	return nil
}

func (s *ContactService) find(ctx context.Context, id int64) (*models.Contact, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contact not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact")
	}
	return contact, nil
}

func (s *ContactService) apply(contact *models.Contact, req ContactRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}

	contact.Name = req.Name
	contact.Email = req.Email
	contact.BirthDay = nil
	if req.BirthDay != "" {
		d, err := time.Parse(birthDayLayout, req.BirthDay)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "birth_day must be YYYY-MM-DD")
		}
		contact.BirthDay = &d
	}
	contact.Phone = nil
	if req.Phone != "" {
		phone := req.Phone
		contact.Phone = &phone
	}
	return nil
}

func (s *ContactService) afterWrite(ctx context.Context, op string, id int64) {
	s.cache.Invalidate(ctx, contactsPattern)
	s.metrics.RecordContactWrite(op)
	s.logger.Info("contact saved", zap.String("op", op), zap.Int64("contact_id", id))
}

// NewContactView derives the grid's display columns for a contact.
func NewContactView(c models.Contact) models.ContactView {
	return models.ContactView{
		Contact:    c,
		ZodiacSign: zodiac.Classify(c.BirthDay),
		Details:    FormatDetails(c),
	}
}

// FormatDetails renders the details column: "BD: MM-DD-YYYY; Phone: <phone>", omitting absent parts.
func FormatDetails(c models.Contact) string {
	parts := make([]string, 0, 2)
	if c.BirthDay != nil {
		parts = append(parts, "BD: "+c.BirthDay.Format(detailsLayout))
	}
	if c.Phone != nil && *c.Phone != "" {
		parts = append(parts, "Phone: "+*c.Phone)
	}
	return strings.Join(parts, "; ")
}

func pageCacheKey(q paging.Query) string {
	return fmt.Sprintf("contacts:page:%d:%d:%s:%s", q.PageIndex, q.PageSize, q.SortField, q.Order)
}
