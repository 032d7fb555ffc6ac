package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/phonebook-api/internal/models"
	"github.com/noah-isme/phonebook-api/internal/repository"
	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
	"github.com/noah-isme/phonebook-api/pkg/paging"
	"github.com/noah-isme/phonebook-api/pkg/zodiac"
)

type mockContactRepo struct {
	contacts   map[int64]models.Contact
	nextID     int64
	lastQuery  paging.Query
	pageCalls  int
	countCalls int
	err        error
}

func newMockContactRepo(contacts ...models.Contact) *mockContactRepo {
	m := &mockContactRepo{contacts: make(map[int64]models.Contact), nextID: 100}
	for _, c := range contacts {
		m.contacts[c.ID] = c
	}
	return m
}

func (m *mockContactRepo) sorted() []models.Contact {
	out := make([]models.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockContactRepo) FindPage(ctx context.Context, q paging.Query) ([]models.Contact, error) {
	m.lastQuery = q
	m.pageCalls++
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := repository.SortColumn(q.SortField); !ok {
		return nil, repository.ErrUnknownSortField
	}
	all := m.sorted()
	if q.Offset() >= len(all) {
		return []models.Contact{}, nil
	}
	end := q.Offset() + q.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[q.Offset():end], nil
}

func (m *mockContactRepo) Count(ctx context.Context) (int, error) {
	m.countCalls++
	if m.err != nil {
		return 0, m.err
	}
	return len(m.contacts), nil
}

func (m *mockContactRepo) FindByID(ctx context.Context, id int64) (*models.Contact, error) {
	if c, ok := m.contacts[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockContactRepo) Create(ctx context.Context, contact *models.Contact) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	contact.ID = m.nextID
	m.contacts[contact.ID] = *contact
	return nil
}

func (m *mockContactRepo) Update(ctx context.Context, contact *models.Contact) error {
	if _, ok := m.contacts[contact.ID]; !ok {
		return sql.ErrNoRows
	}
	m.contacts[contact.ID] = *contact
	return nil
}

func (m *mockContactRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.contacts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.contacts, id)
	return nil
}

// memoryCache is an in-process CacheRepository.
type memoryCache struct {
	entries     map[string]models.ContactPage
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]models.ContactPage)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	page, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*models.ContactPage)) = page
	return nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = value.(models.ContactPage)
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

func dayPtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func seedContacts(n int) []models.Contact {
	out := make([]models.Contact, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Contact{ID: int64(i), Name: "Contact", Email: "c@example.com"})
	}
	return out
}

func newTestContactService(repo *mockContactRepo, cache *CacheService) *ContactService {
	return NewContactService(repo, cache, nil, validator.New(), zap.NewNop(), ContactServiceConfig{PageSize: 45, MaxPageSize: 100})
}

func TestContactServiceListMapsFirstRow(t *testing.T) {
	repo := newMockContactRepo(seedContacts(100)...)
	svc := newTestContactService(repo, nil)

	list, err := svc.List(context.Background(), ListContactsRequest{FirstRow: 50, Ascending: true})
	require.NoError(t, err)

	assert.Equal(t, paging.Query{PageIndex: 1, PageSize: 45, Order: paging.Ascending, SortField: "id"}, repo.lastQuery)
	require.Len(t, list.Items, 45)
	assert.Equal(t, int64(46), list.Items[0].ID)
	assert.Equal(t, &models.Pagination{FirstRow: 45, Page: 1, PageSize: 45, TotalCount: 100, SortField: "id", SortOrder: "ASC"}, list.Pagination)
	assert.False(t, list.CacheHit)
}

func TestContactServiceListDerivesDisplayColumns(t *testing.T) {
	repo := newMockContactRepo(
		models.Contact{ID: 1, Name: "Ada", Email: "ada@example.com", BirthDay: dayPtr(1815, time.December, 10), Phone: strPtr("555-0100")},
		models.Contact{ID: 2, Name: "Bob", Email: "bob@example.com"},
	)
	svc := newTestContactService(repo, nil)

	list, err := svc.List(context.Background(), ListContactsRequest{Ascending: true, SortField: "name"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, zodiac.Sagittarius, list.Items[0].ZodiacSign)
	assert.Equal(t, "BD: 12-10-1815; Phone: 555-0100", list.Items[0].Details)
	assert.Equal(t, zodiac.None, list.Items[1].ZodiacSign)
	assert.Equal(t, "", list.Items[1].Details)
	assert.Equal(t, "name", repo.lastQuery.SortField)
}

func TestContactServiceListRejectsBadInput(t *testing.T) {
	svc := newTestContactService(newMockContactRepo(), nil)

	_, err := svc.List(context.Background(), ListContactsRequest{FirstRow: -5})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidArgument))

	_, err = svc.List(context.Background(), ListContactsRequest{PageSize: -1})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidArgument))

	_, err = svc.List(context.Background(), ListContactsRequest{PageSize: 1000})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.List(context.Background(), ListContactsRequest{SortField: "shoe_size"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidArgument))
}

func TestContactServiceListRepositoryFailure(t *testing.T) {
	repo := newMockContactRepo()
	repo.err = errors.New("connection reset")
	svc := newTestContactService(repo, nil)

	_, err := svc.List(context.Background(), ListContactsRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestContactServiceListUsesCache(t *testing.T) {
	repo := newMockContactRepo(seedContacts(3)...)
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	svc := newTestContactService(repo, cache)
	ctx := context.Background()

	first, err := svc.List(ctx, ListContactsRequest{Ascending: true})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.List(ctx, ListContactsRequest{Ascending: true})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, 1, repo.pageCalls)
	assert.Equal(t, first.Items, second.Items)

	_, err = svc.Create(ctx, ContactRequest{Name: "New", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"contacts:*"}, store.invalidated)

	third, err := svc.List(ctx, ListContactsRequest{Ascending: true})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Len(t, third.Items, 4)
}

func TestContactServiceCreate(t *testing.T) {
	repo := newMockContactRepo()
	svc := newTestContactService(repo, nil)

	view, err := svc.Create(context.Background(), ContactRequest{
		Name:     "  Grace Hopper ",
		Email:    "grace@example.com",
		BirthDay: "1906-12-09",
		Phone:    "555-0199",
	})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "Grace Hopper", view.Name)
	require.NotNil(t, view.BirthDay)
	assert.Equal(t, time.December, view.BirthDay.Month())
	assert.Equal(t, zodiac.Sagittarius, view.ZodiacSign)
	assert.Equal(t, "BD: 12-09-1906; Phone: 555-0199", view.Details)
	assert.Len(t, repo.contacts, 1)
}

func TestContactServiceCreateOptionalFields(t *testing.T) {
	repo := newMockContactRepo()
	svc := newTestContactService(repo, nil)

	view, err := svc.Create(context.Background(), ContactRequest{Name: "Ann", Email: "ann@example.com", Phone: "   "})
	require.NoError(t, err)
	assert.Nil(t, view.BirthDay)
	assert.Nil(t, view.Phone)
	assert.Equal(t, zodiac.None, view.ZodiacSign)
}

func TestContactServiceCreateValidation(t *testing.T) {
	svc := newTestContactService(newMockContactRepo(), nil)

	cases := []ContactRequest{
		{Email: "x@example.com"},
		{Name: "X", Email: "not-an-email"},
		{Name: "X", Email: "x@example.com", BirthDay: "12/09/1906"},
		{Name: "X", Email: "x@example.com", Phone: strings.Repeat("9", 40)},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "%+v", req)
	}
}

func TestContactServiceUpdate(t *testing.T) {
	repo := newMockContactRepo(models.Contact{ID: 7, Name: "Old", Email: "old@example.com", Phone: strPtr("1")})
	svc := newTestContactService(repo, nil)

	view, err := svc.Update(context.Background(), 7, ContactRequest{Name: "New", Email: "new@example.com", BirthDay: "2000-01-20"})
	require.NoError(t, err)
	assert.Equal(t, "New", view.Name)
	assert.Nil(t, view.Phone)
	assert.Equal(t, zodiac.Aquarius, view.ZodiacSign)
	assert.Equal(t, "new@example.com", repo.contacts[7].Email)
}

func TestContactServiceUpdateMissing(t *testing.T) {
	svc := newTestContactService(newMockContactRepo(), nil)

	_, err := svc.Update(context.Background(), 9, ContactRequest{Name: "New", Email: "new@example.com"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestContactServiceGetAndDelete(t *testing.T) {
	repo := newMockContactRepo(models.Contact{ID: 3, Name: "Cleo", Email: "cleo@example.com", BirthDay: dayPtr(1999, time.July, 30)})
	svc := newTestContactService(repo, nil)
	ctx := context.Background()

	view, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, zodiac.Leo, view.ZodiacSign)

	require.NoError(t, svc.Delete(ctx, 3))
	assert.Empty(t, repo.contacts)

	err = svc.Delete(ctx, 3)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Get(ctx, 3)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestContactServiceCount(t *testing.T) {
	svc := newTestContactService(newMockContactRepo(seedContacts(4)...), nil)

	total, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestFormatDetails(t *testing.T) {
	assert.Equal(t, "BD: 04-01-1990", FormatDetails(models.Contact{BirthDay: dayPtr(1990, time.April, 1)}))
	assert.Equal(t, "Phone: 123", FormatDetails(models.Contact{Phone: strPtr("123")}))
	assert.Equal(t, "", FormatDetails(models.Contact{Phone: strPtr("")}))
}
