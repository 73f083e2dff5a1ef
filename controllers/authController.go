package controllers

import (
	"log/slog"
	"net/http"

	"citycompass/middlewares"
	"citycompass/pkg/resp"
	"citycompass/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type loginReq struct {
	DepartmentID string `json:"department_id" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// Login exchanges a department code and password for a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := "invalid request body"
		if isMissingField(err) {
			msg = "Department ID and password are required"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	token, dept, err := ac.auth.Login(c.Request.Context(), req.DepartmentID, req.Password)
	if err != nil {
		resp.Error(c, err)
		return
	}

	slog.Info("department logged in", "department_id", dept.Code)
	resp.OK(c, gin.H{
		"message":    "Login successful",
		"token":      token,
		"department": dept.Summary(),
	})
}

// GetMe returns the department the bearer token was issued to.
func (ac *AuthController) GetMe(c *gin.Context) {
	claims := middlewares.CurrentDepartment(c)
	resp.OK(c, gin.H{
		"id":            claims.ID,
		"name":          claims.Name,
		"department_id": claims.DepartmentID,
		"category":      claims.Category,
		"expires_at":    claims.ExpiresAt.Time,
	})
}
