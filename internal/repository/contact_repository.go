package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/phonebook-api/internal/models"
	"github.com/noah-isme/phonebook-api/pkg/paging"
)

// ErrUnknownSortField is returned when a page query names a column that cannot be sorted on.
var ErrUnknownSortField = errors.New("unknown sort field")

// QueryObserver receives query timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// sortColumns maps grid property names onto columns.
var sortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"email":       "email",
	"birthDay":    "birth_day",
	"birth_day":   "birth_day",
	"phone":       "phone",
	"phoneNumber": "phone",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

const contactColumns = "id, name, email, birth_day, phone, created_at, updated_at"

// ContactRepository manages persistence for phone book entries.
type ContactRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewContactRepository constructs a ContactRepository. observer may be nil.
func NewContactRepository(db *sqlx.DB, observer QueryObserver) *ContactRepository {
	return &ContactRepository{db: db, observer: observer}
}

// SortColumn resolves a page query sort field to a column name.
func SortColumn(field string) (string, bool) {
	column, ok := sortColumns[field]
	return column, ok
}

// FindPage returns the contacts of one page. Ties are broken by id so that pages never overlap.
func (r *ContactRepository) FindPage(ctx context.Context, q paging.Query) ([]models.Contact, error) {
	column, ok := SortColumn(q.SortField)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortField, q.SortField)
	}
	order := paging.Descending
	if q.Ascending() {
		order = paging.Ascending
	}
	tieBreak := ""
	if column != "id" {
		tieBreak = ", id ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM contacts ORDER BY %s %s%s LIMIT %d OFFSET %d",
		contactColumns, column, order, tieBreak, q.Limit(), q.Offset())

	defer r.observe("contacts.find_page", time.Now())
	contacts := make([]models.Contact, 0, q.Limit())
	if err := r.db.SelectContext(ctx, &contacts, query); err != nil {
		return nil, fmt.Errorf("find contact page: %w", err)
	}
	return contacts, nil
}

// Count returns the total number of contacts.
func (r *ContactRepository) Count(ctx context.Context) (int, error) {
	defer r.observe("contacts.count", time.Now())
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM contacts"); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return total, nil
}

// FindByID fetches a contact, returning sql.ErrNoRows when it does not exist.
func (r *ContactRepository) FindByID(ctx context.Context, id int64) (*models.Contact, error) {
	defer r.observe("contacts.find_by_id", time.Now())
	var contact models.Contact
	query := fmt.Sprintf("SELECT %s FROM contacts WHERE id = $1", contactColumns)
	if err := r.db.GetContext(ctx, &contact, query, id); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Create inserts a contact and fills in its generated ID.
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	defer r.observe("contacts.create", time.Now())
	now := time.Now().UTC()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now
	const query = `INSERT INTO contacts (name, email, birth_day, phone, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &contact.ID, query,
		contact.Name, contact.Email, contact.BirthDay, contact.Phone, contact.CreatedAt, contact.UpdatedAt); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

// Update overwrites an existing contact, returning sql.ErrNoRows when it does not exist.
func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	defer r.observe("contacts.update", time.Now())
	contact.UpdatedAt = time.Now().UTC()
	const query = `UPDATE contacts SET name = :name, email = :email, birth_day = :birth_day, phone = :phone, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, contact)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return requireAffected(res, "update contact")
}

// Delete removes a contact, returning sql.ErrNoRows when it does not exist.
func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	defer r.observe("contacts.delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return requireAffected(res, "delete contact")
}

func (r *ContactRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
