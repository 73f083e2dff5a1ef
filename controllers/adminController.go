package controllers

import (
	"errors"
	"io"
	"net/http"

	"citycompass/middlewares"
	"citycompass/pkg/resp"
	"citycompass/services"

	"github.com/gin-gonic/gin"
)

// AdminController serves the department endpoints behind the access gate.
type AdminController struct {
	issues   *services.IssueService
	engine   *services.TransitionEngine
	pageSize int
}

func NewAdminController(issues *services.IssueService, engine *services.TransitionEngine, pageSize int) *AdminController {
	return &AdminController{issues: issues, engine: engine, pageSize: pageSize}
}

func (ac *AdminController) ListIssues(c *gin.Context) {
	f, err := issueFilter(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	issues, err := ac.issues.List(c.Request.Context(), f, ac.pageSize)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, issues)
}

type statusReq struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment" binding:"max=1000"`
}

// UpdateStatus moves an issue to a new status and records who did it.
func (ac *AdminController) UpdateStatus(c *gin.Context) {
	id, err := issueID(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}

	actor := middlewares.CurrentDepartment(c)
	update, issue, err := ac.engine.Transition(c.Request.Context(), id, actor.ID, req.Status, req.Comment)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{
		"message": "Issue status updated successfully",
		"issue":   issue,
		"update":  update,
	})
}

type reopenReq struct {
	Comment string `json:"comment" binding:"max=1000"`
}

// Reopen sends a resolved issue back to pending.
func (ac *AdminController) Reopen(c *gin.Context) {
	id, err := issueID(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	// The body is optional; an empty one is fine, a malformed one is not.
	var req reopenReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
		return
	}

	actor := middlewares.CurrentDepartment(c)
	update, issue, err := ac.engine.Reopen(c.Request.Context(), id, actor.ID, req.Comment)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{
		"message": "Issue reopened",
		"issue":   issue,
		"update":  update,
	})
}

// GetUpdates returns the audit trail of an issue, oldest first.
func (ac *AdminController) GetUpdates(c *gin.Context) {
	id, err := issueID(c)
	if err != nil {
		resp.Error(c, err)
		return
	}
	updates, err := ac.issues.History(c.Request.Context(), id)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, updates)
}
