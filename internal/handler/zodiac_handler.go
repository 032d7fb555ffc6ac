package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/phonebook-api/pkg/errors"
	"github.com/noah-isme/phonebook-api/pkg/response"
	"github.com/noah-isme/phonebook-api/pkg/zodiac"
)

// ZodiacResult is the classifier response.
type ZodiacResult struct {
	Date string      `json:"date,omitempty"`
	Sign zodiac.Sign `json:"sign"`
}

// ZodiacHandler exposes the date classifier.
type ZodiacHandler struct{}

// NewZodiacHandler constructs ZodiacHandler.
func NewZodiacHandler() *ZodiacHandler {
	return &ZodiacHandler{}
}

// Classify godoc
// @Summary Zodiac sign for a date
// @Tags Zodiac
// @Produce json
// @Param date query string false "Date as YYYY-MM-DD; omitted yields an empty sign"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /zodiac [get]
func (h *ZodiacHandler) Classify(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		response.JSON(c, http.StatusOK, ZodiacResult{Sign: zodiac.Classify(nil)}, nil)
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, appErrors.ErrInvalidArgument.Status, "date must be YYYY-MM-DD"))
		return
	}
	response.JSON(c, http.StatusOK, ZodiacResult{Date: raw, Sign: zodiac.Classify(&date)}, nil)
}
