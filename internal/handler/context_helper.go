package handler

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
	"github.com/noah-isme/quick-event-planner/pkg/ical"
)

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return v, nil
}

func sessionID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	return id, nil
}

func dateParam(c *gin.Context, key string) (ical.Date, error) {
	d, err := ical.ParseDate(c.Param(key))
	if err != nil {
		return ical.Date{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return d, nil
}

// bindOptionalJSON decodes the body into dst. An empty body leaves dst
// untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return appErrors.Clone(appErrors.ErrValidation, "invalid request body")
	}
	return nil
}
