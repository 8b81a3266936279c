package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	cookieName  = "token"
	sessionTTL  = 72 * time.Hour
	tokenIssuer = "tenantchat-fakeapi"
)

type sessionClaims struct {
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(acc *account) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		CompanyID: acc.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Server) parseToken(raw string) (*sessionClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("parse token: missing subject")
	}
	return &claims, nil
}

func setSessionCookie(c *gin.Context, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	} else {
		cookie.Expires = time.Unix(0, 0)
	}
	http.SetCookie(c.Writer, cookie)
}

type loginRequest struct {
	CompanyDomain string `json:"company_domain"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CompanyDomain == "" || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Company domain, email and password are required")
		return
	}

	s.mu.Lock()
	company := s.companyByDomainLocked(req.CompanyDomain)
	var stored *account
	if company != nil {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		for _, u := range s.users {
			if u.CompanyID == company.ID && u.Email == email {
				stored = u
				break
			}
		}
	}
	var acc account
	if stored != nil {
		acc = *stored
	}
	companyActive := company != nil && company.IsActive
	s.mu.Unlock()

	if company == nil {
		fail(c, http.StatusUnauthorized, "Invalid company domain")
		return
	}
	if !companyActive {
		fail(c, http.StatusUnauthorized, "Company is deactivated")
		return
	}
	if stored == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !acc.IsActive {
		fail(c, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	token, err := s.issueToken(&acc)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	setSessionCookie(c, token, int(sessionTTL.Seconds()))
	c.Set(accountKey, &acc)

	if !s.loginPayload {
		ok(c, http.StatusOK, "Login successful", nil)
		return
	}
	s.mu.Lock()
	user := s.summary(&acc)
	s.mu.Unlock()
	ok(c, http.StatusOK, "Login successful", gin.H{
		"user":    user,
		"company": acc.CompanyID,
		"role":    acc.RoleName,
	})
}

func (s *Server) me(c *gin.Context) {
	acc := currentAccount(c)
	s.mu.Lock()
	user := s.summary(acc)
	s.mu.Unlock()
	ok(c, http.StatusOK, "User retrieved", user)
}

func (s *Server) logout(c *gin.Context) {
	setSessionCookie(c, "", -1)
	ok(c, http.StatusOK, "Logout successful", nil)
}
