package auth

import (
	"net/http"

	"inkwell/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// ContextUserKey holds the authenticated user's id in the gin context.
	ContextUserKey = "current_user"
	// ContextClaimsKey holds the full token claims.
	ContextClaimsKey = "current_claims"
)

func MiddleWare(jwtKey []byte, db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := ctx.GetHeader("Authorization")
		if tokenString == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization token is missing",
			})
			ctx.Abort()
			return
		}

		claims, err := ParseToken(tokenString, jwtKey)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid Authorization Token",
			})
			ctx.Abort()
			return
		}

		var user models.User
		if err := db.Where("id = ?", claims.ID).First(&user).Error; err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid Authorization Token",
			})
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserKey, user.ID)
		ctx.Set(ContextClaimsKey, claims)
		ctx.Next()
	}
}

// CallerID returns the authenticated user id set by MiddleWare.
func CallerID(ctx *gin.Context) string {
	return ctx.GetString(ContextUserKey)
}

// CallerClaims returns the token claims set by MiddleWare, or nil outside an
// authenticated route.
func CallerClaims(ctx *gin.Context) *Claims {
	v, ok := ctx.Get(ContextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
