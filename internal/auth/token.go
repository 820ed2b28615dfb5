package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/syncspace-dev/syncspace/internal/models"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, malformed structure, or past expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

const (
	purposeSession    = "session"
	purposeInvitation = "invitation"
)

// SessionClaims identify the authenticated caller.
type SessionClaims struct {
	UserID uint64
}

// InvitationClaims carry the admission ticket payload.
type InvitationClaims struct {
	Email          string
	OrganizationID uint64
	Role           models.OrganizationRole
}

type sessionJWTClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type invitationJWTClaims struct {
	Purpose        string                  `json:"purpose"`
	Email          string                  `json:"email"`
	OrganizationID uint64                  `json:"org_id"`
	Role           models.OrganizationRole `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies the signed, time-limited tokens used for
// both session authentication and invitations.
type Codec struct {
	secret        []byte
	sessionTTL    time.Duration
	invitationTTL time.Duration
}

// NewCodec creates a Codec signing with the given secret.
func NewCodec(secret string, sessionTTL, invitationTTL time.Duration) *Codec {
	return &Codec{
		secret:        []byte(secret),
		sessionTTL:    sessionTTL,
		invitationTTL: invitationTTL,
	}
}

// IssueSession mints a session token for a user.
func (c *Codec) IssueSession(userID uint64) (string, error) {
	now := time.Now()
	claims := sessionJWTClaims{
		Purpose: purposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// IssueInvitation mints an invitation token for an email address. The
// jti keeps the persisted token column unique even for identical claims
// minted within the same second.
func (c *Codec) IssueInvitation(email string, orgID uint64, role models.OrganizationRole) (string, error) {
	now := time.Now()
	claims := invitationJWTClaims{
		Purpose:        purposeInvitation,
		Email:          email,
		OrganizationID: orgID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.invitationTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// VerifySession verifies a session token and returns its claims.
func (c *Codec) VerifySession(tokenString string) (*SessionClaims, error) {
	var claims sessionJWTClaims
	if err := c.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeSession {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &SessionClaims{UserID: userID}, nil
}

// VerifyInvitation verifies an invitation token and returns its claims.
func (c *Codec) VerifyInvitation(tokenString string) (*InvitationClaims, error) {
	var claims invitationJWTClaims
	if err := c.parse(tokenString, &claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeInvitation {
		return nil, ErrInvalidToken
	}

	return &InvitationClaims{
		Email:          claims.Email,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
	}, nil
}

func (c *Codec) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
