package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phonebook-api/internal/middleware"
	"github.com/noah-isme/phonebook-api/internal/models"
	"github.com/noah-isme/phonebook-api/internal/service"
	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
	"github.com/noah-isme/phonebook-api/pkg/response"
)

type contactService interface {
	List(ctx context.Context, req service.ListContactsRequest) (*service.ContactList, error)
	Get(ctx context.Context, id int64) (*models.ContactView, error)
	Create(ctx context.Context, req service.ContactRequest) (*models.ContactView, error)
	Update(ctx context.Context, id int64, req service.ContactRequest) (*models.ContactView, error)
	Delete(ctx context.Context, id int64) error
}

type exportService interface {
	Export(ctx context.Context, format string) (*service.ExportResult, error)
}

// ContactHandler exposes the phone book grid and form endpoints.
type ContactHandler struct {
	contacts contactService
	exports  exportService
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contacts contactService, exports exportService) *ContactHandler {
	return &ContactHandler{contacts: contacts, exports: exports}
}

// List godoc
// @Summary Lazy-load a page of contacts
// @Tags Contacts
// @Produce json
// @Param firstRow query int false "Zero-based first visible row"
// @Param pageSize query int false "Rows per page (default 45)"
// @Param asc query bool false "Ascending order (default true)"
// @Param sort query string false "Sort property (default id)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	req := service.ListContactsRequest{Ascending: true, SortField: strings.TrimSpace(c.Query("sort"))}
	var err error
	if req.FirstRow, err = intQuery(c, "firstRow"); err != nil {
		response.Error(c, err)
		return
	}
	if req.PageSize, err = intQuery(c, "pageSize"); err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("asc"); raw != "" {
		asc, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			response.Error(c, appErrors.Wrap(parseErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "asc must be a boolean"))
			return
		}
		req.Ascending = asc
	}

	list, err := h.contacts.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, list.CacheHit)
	response.JSON(c, http.StatusOK, list.Items, list.Pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a contact
// @Tags Contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /contacts/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	contact, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact, nil)
}

// Create godoc
// @Summary Add a contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param payload body service.ContactRequest true "Contact payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	contact, err := h.contacts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, contact)
}

// Update godoc
// @Summary Edit a contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param id path int true "Contact ID"
// @Param payload body service.ContactRequest true "Contact payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	contact, err := h.contacts.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact, nil)
}

// Delete godoc
// @Summary Delete a contact
// @Tags Contacts
// @Param id path int true "Contact ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the phone book
// @Tags Contacts
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx (default csv)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /contacts/export [get]
func (h *ContactHandler) Export(c *gin.Context) {
	result, err := h.exports.Export(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func contactID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "contact id must be a positive integer")
	}
	return id, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}
