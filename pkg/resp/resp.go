package resp

import (
	"errors"
	"log/slog"
	"net/http"

	"citycompass/apperror"

	"github.com/gin-gonic/gin"
)

const genericMessage = "Something went wrong"

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Error writes err as {"error": msg} with the status its Kind maps to.
// Storage and unhandled failures are logged and answered generically.
func Error(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	msg := err.Error()
	var ae *apperror.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	if !apperror.Public(err) {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"kind", apperror.KindOf(err).String(),
			"err", err)
		msg = genericMessage
	}
	c.JSON(status, gin.H{"error": msg})
}

// Abort is Error for middlewares: it also stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Recovery converts panics into a logged 500 with the generic body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("unhandled panic", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": genericMessage})
	})
}
