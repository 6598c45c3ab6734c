package middleware

import (
	"context"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ishikisiko/match-telemetry/models"
)

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errNoClaims
	}

	userIDClaim, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}

	var userID int
	switch v := userIDClaim.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", jwtClaimUserID, v)
		}
		userID = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim %q: %w", jwtClaimUserID, v, err)
		}
		userID = parsed
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", jwtClaimUserID, userIDClaim)
	}

	if userID <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, userID)
	}
	return userID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errNoClaims
	}

	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", fmt.Errorf("missing or invalid '%s' claim in token", jwtClaimRole)
	}

	role := models.UserRole(roleStr)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
	return role, nil
}

// WithUserClaims returns ctx carrying claims for the given user. Handler
// tests use it to skip token signing.
func WithUserClaims(ctx context.Context, userID int, role models.UserRole) context.Context {
	return context.WithValue(ctx, userContextKey, jwt.MapClaims{
		jwtClaimUserID: float64(userID),
		jwtClaimRole:   string(role),
	})
}
