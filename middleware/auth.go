package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aagaur/studiocms/utils"
)

const (
	// ContextAdminKey holds the authenticated admin username.
	ContextAdminKey = "admin"
	// ContextTokenKey holds the raw bearer token so logout can revoke it.
	ContextTokenKey = "token"
	// ContextClaimsKey holds the parsed *utils.AdminClaims.
	ContextClaimsKey = "claims"
)

// AdminRequired is the protect gate for write routes: a valid, unrevoked admin JWT.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "missing or malformed bearer token")
			ctx.Abort()
			return
		}
		if utils.IsTokenBlacklisted(token) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}
		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextAdminKey, claims.Username)
		ctx.Set(ContextTokenKey, token)
		ctx.Set(ContextClaimsKey, claims)
		ctx.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
