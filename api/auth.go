package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/warp/leave-composer/generic"
)

// Roles carried in tokens.
const (
	RoleEmployee = "employee"
	RoleHR       = "hr"
)

// Claims identify the caller: an employee of an org, optionally with HR rights.
type Claims struct {
	OrgID string `json:"org"`
	Role  string `json:"role"`
	jwt.RegisteredClaims

	// unrestricted is set when authentication is disabled.
	unrestricted bool
}

// EmployeeID is the token subject.
func (c *Claims) EmployeeID() string { return c.Subject }

// IsHR reports whether the caller may manage the org.
func (c *Claims) IsHR() bool { return c.Role == RoleHR }

// CanManage reports whether the caller may manage orgID.
func (c *Claims) CanManage(orgID string) bool {
	return c.unrestricted || (c.IsHR() && c.OrgID == orgID)
}

// CanActFor reports whether the caller may read or write an employee's data.
func (c *Claims) CanActFor(employeeID, orgID string) bool {
	if c.unrestricted {
		return true
	}
	if c.IsHR() {
		return c.OrgID == orgID
	}
	return c.Subject == employeeID
}

// GenerateToken signs an HS256 token for subject.
func GenerateToken(secret, subject, orgID, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		OrgID: orgID,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.OrgID == "" {
		return nil, errors.New("token missing subject or org")
	}
	return claims, nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type claimsKey struct{}

// Authenticate requires a valid bearer token. With an empty secret every
// request passes unrestricted (development only); X-Employee-ID and X-Org-ID
// headers then stand in for the token's subject and org.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				claims := &Claims{OrgID: r.Header.Get("X-Org-ID"), Role: RoleHR, unrestricted: true}
				claims.Subject = r.Header.Get("X-Employee-ID")
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
				return
			}

			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "Missing bearer token", generic.ErrUnauthorized)
				return
			}
			claims, err := ParseToken(secret, tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// ClaimsFrom returns the caller's claims.
func ClaimsFrom(ctx context.Context) *Claims {
	if c, ok := ctx.Value(claimsKey{}).(*Claims); ok {
		return c
	}
	return &Claims{}
}
