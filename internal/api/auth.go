package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// authError is the JSON body for an authentication/authorization failure.
// It carries a stable Code a client can branch on without string-matching
// Message, unlike the teacher's middleware, which returns a bare
// {"error": "<string>"}.
type authError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": authError{Code: code, Message: message}})
	c.Abort()
}

// AuthMiddleware authenticates the bearer JWT on a request and stashes the
// caller's username, user ID, and tournament role in the gin context. It
// does not by itself restrict who may proceed — pairing a round, reporting
// a result, and dropping a player are organizer actions, while standings and
// the spectator feed stay public, so routes that need the stronger check
// also chain RequireOrganizer.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortAuth(c, http.StatusUnauthorized, "missing_token", "a bearer token is required to manage this tournament")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortAuth(c, http.StatusUnauthorized, "malformed_header", "authorization header must be 'Bearer <token>'")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "invalid_token", "token could not be verified")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			abortAuth(c, http.StatusUnauthorized, "invalid_claims", "token claims are malformed")
			return
		}

		c.Set("username", claims["username"])
		c.Set("role", roleFromClaims(claims))
		if raw, exists := claims["user_id"].(string); exists {
			userID, err := uuid.Parse(raw)
			if err != nil {
				abortAuth(c, http.StatusUnauthorized, "invalid_user_id", "token's user identifier is not a valid UUID")
				return
			}
			c.Set("userID", userID)
		}
		c.Next()
	}
}

// roleFromClaims defaults an unmarked token to "participant" rather than
// silently granting organizer rights to anyone who can merely authenticate.
func roleFromClaims(claims jwt.MapClaims) string {
	if role, ok := claims["role"].(string); ok && role != "" {
		return role
	}
	return "participant"
}

// RequireOrganizer rejects any request whose token role is not "organizer".
// It must run after AuthMiddleware, which populates the "role" context key;
// it reflects the engine's distinction between the organizer who drives
// pairing/results/drops and participants who only ever read tournament state.
func RequireOrganizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role != "organizer" {
			abortAuth(c, http.StatusForbidden, "organizer_required", "only the tournament organizer can perform this action")
			return
		}
		c.Next()
	}
}
