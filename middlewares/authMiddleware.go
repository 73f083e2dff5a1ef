package middlewares

import (
	"strings"

	"citycompass/apperror"
	"citycompass/pkg/resp"
	"citycompass/utils"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key the verified claims are stored under.
const ClaimsKey = "claims"

// Gate guards the department routes. A missing, malformed, tampered or
// expired token is a 401; a valid token that does not name a department
// is a 403.
type Gate struct {
	tokens *utils.TokenIssuer
}

func NewGate(tokens *utils.TokenIssuer) *Gate {
	return &Gate{tokens: tokens}
}

// Authorize verifies a raw token and checks that it carries department
// claims.
func (g *Gate) Authorize(token string) (*utils.Claims, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if !claims.IsDepartment() {
		return nil, apperror.InsufficientPrivilege("department access required")
	}
	return claims, nil
}

// AuthMiddleware reads "Authorization: Bearer <token>" and stores the
// claims for the handlers.
func (g *Gate) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := g.Authorize(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			resp.Abort(c, err)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// CurrentDepartment returns the claims set by AuthMiddleware.
func CurrentDepartment(c *gin.Context) *utils.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
