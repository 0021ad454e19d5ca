package auth

import (
	"github.com/andalib/andalib-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AdminID int64
	Email   string
	Role    enums.AdminRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to admins.
type AccessTokenClaims struct {
	AdminID int64           `json:"admin_id"`
	Email   string          `json:"email,omitempty"`
	Role    enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}
