package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims carries the caller identity the workflow needs for approvals.
type Claims struct {
	UserID         int64  `json:"user_id"`
	Email          string `json:"email"`
	OrganizationID int64  `json:"organization_id"`
	jwt.RegisteredClaims
}
