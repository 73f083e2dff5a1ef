package controllers

import (
	"strconv"
	"strings"

	"citycompass/apperror"
	"citycompass/models"

	"github.com/gin-gonic/gin"
)

// issueID parses the :id path segment. Anything that is not a positive
// integer cannot name an issue, so it is reported as not found.
func issueID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, apperror.NotFound("issue")
	}
	return uint(id), nil
}

// issueFilter reads category, status, limit and offset from the query.
func issueFilter(c *gin.Context) (models.IssueFilter, error) {
	f := models.IssueFilter{
		Category: strings.TrimSpace(c.Query("category")),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st, ok := models.ParseStatus(raw)
		if !ok {
			return f, apperror.Validation("invalid status %q", raw)
		}
		f.Status = st
	}
	var err error
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("%s must be an integer", key)
	}
	return n, nil
}
