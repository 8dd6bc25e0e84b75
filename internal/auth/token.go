package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"storvbox-be/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "session_token"
	SessionTTL        = 7 * 24 * time.Hour
	AdminTokenTTL     = 8 * time.Hour

	issuer           = "storvbox"
	audienceSession  = "storefront"
	audienceAdmin    = "admin-panel"
	RoleAdmin        = "admin"
	RoleCustomer     = "customer"
	adminSubjectName = "Администратор"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.KindAuthentication, "Невалиден имейл или парола")
	errSecretMissing      = errors.New("jwt secret is not configured")
)

// SessionUser is the subset of a user record embedded in a customer session.
type SessionUser struct {
	ID        string
	Email     string
	Name      string
	Role      string
	PriceTier string
}

type SessionClaims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	PriceTier string `json:"priceTier"`
	jwt.RegisteredClaims
}

type AdminClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret        string
	AdminEmail    string
	AdminPassword string
	SecureCookies bool
}

// Manager issues and verifies customer sessions and admin tokens. The two
// token kinds carry different audiences and neither verifies as the other.
type Manager struct {
	secret        []byte
	adminEmail    string
	adminPassword string
	secureCookies bool
	now           func() time.Time
}

func NewManager(opts Options) *Manager {
	return &Manager{
		secret:        []byte(opts.Secret),
		adminEmail:    strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		adminPassword: opts.AdminPassword,
		secureCookies: opts.SecureCookies,
		now:           time.Now,
	}
}

func (m *Manager) CreateSession(u SessionUser) (string, error) {
	if len(m.secret) == 0 {
		return "", errSecretMissing
	}

	now := m.now()
	claims := SessionClaims{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		PriceTier: u.PriceTier,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{audienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifySession returns nil for any missing, malformed, expired or foreign token.
func (m *Manager) VerifySession(token string) *SessionClaims {
	if token == "" || len(m.secret) == 0 {
		return nil
	}

	claims := &SessionClaims{}
	if !m.parse(token, claims, audienceSession) {
		return nil
	}
	if claims.UserID == "" {
		return nil
	}
	return claims
}

// RequireRole is a plain equality check; there is no role hierarchy.
func RequireRole(claims *SessionClaims, role string) bool {
	return claims != nil && claims.Role == role
}

// ValidateAdminCredentials checks the single configured admin account.
func (m *Manager) ValidateAdminCredentials(email, password string) error {
	if m.adminPassword == "" || m.adminEmail == "" {
		return ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(m.adminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPassword)) == 1
	if !emailOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

func (m *Manager) CreateAdminToken(email string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errSecretMissing
	}

	now := m.now()
	expires := now.Add(AdminTokenTTL)
	claims := AdminClaims{
		Email: email,
		Name:  adminSubjectName,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			Audience:  jwt.ClaimStrings{audienceAdmin},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return token, expires, err
}

func (m *Manager) VerifyAdminToken(token string) *AdminClaims {
	if token == "" || len(m.secret) == 0 {
		return nil
	}

	claims := &AdminClaims{}
	if !m.parse(token, claims, audienceAdmin) {
		return nil
	}
	if claims.Role != RoleAdmin {
		return nil
	}
	return claims
}

func (m *Manager) parse(token string, claims jwt.Claims, audience string) bool {
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	return err == nil && parsed.Valid
}

func (m *Manager) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ExtractSessionToken prefers the session cookie and falls back to a Bearer header.
func ExtractSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ExtractBearerToken(r)
}

func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
