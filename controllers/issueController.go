package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"citycompass/models"
	"citycompass/pkg/resp"
	"citycompass/services"
	"citycompass/storage"

	"github.com/gin-gonic/gin"
)

// IssueController serves the citizen-facing issue endpoints.
type IssueController struct {
	issues   *services.IssueService
	blobs    storage.BlobStore
	pageSize int
}

func NewIssueController(issues *services.IssueService, blobs storage.BlobStore, pageSize int) *IssueController {
	return &IssueController{issues: issues, blobs: blobs, pageSize: pageSize}
}

type createIssueReq struct {
	Category    string `json:"category" form:"category"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Location    string `json:"location" form:"location"`
	Priority    string `json:"priority" form:"priority"`
}

// CreateIssue accepts a multipart report with an optional "image" file.
// A JSON body without image is accepted too.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var req createIssueReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in := models.NewIssue{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
			return
		default:
			url, err := ic.blobs.Save(fh)
			if err != nil {
				resp.Error(c, err)
				return
			}
			in.ImageURL = &url
		}
	}

	issue, err := ic.issues.Create(c.Request.Context(), in)
	if err != nil {
		if in.ImageURL != nil {
			if rerr := ic.blobs.Remove(*in.ImageURL); rerr != nil {
				slog.Warn("failed to remove orphaned upload", "url", *in.ImageURL, "err", rerr)
			}
		}
		resp.Error(c, err)
		return
	}

	slog.Info("issue reported", "id", issue.ID, "category", issue.Category, "priority", issue.Priority)
	resp.Created(c, gin.H{
		"message": "Issue reported successfully",
		"issue":   issue,
	})
}

// GetIssues lists issues newest first.
func (ic *IssueController) GetIssues(c *gin.Context) {
	f, err := issueFilter(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	issues, err := ic.issues.List(c.Request.Context(), f, ic.pageSize)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, issues)
}

func (ic *IssueController) GetIssue(c *gin.Context) {
	id, err := issueID(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	issue, err := ic.issues.Get(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, issue)
}

// GetStats returns the dashboard aggregate, computed on every call.
func (ic *IssueController) GetStats(c *gin.Context) {
	stats, err := ic.issues.Stats(c.Request.Context())
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, stats)
}
