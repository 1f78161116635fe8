package sim

import (
	"fmt"
	"time"

	"github.com/arko-chat/geobridge/internal/sdk"
)

const (
	tokenName = "geobridge-location"
	tokenTTL  = time.Hour

	// fixes less accurate than this fail verification
	maxTokenAccuracy = 1000.0
)

// TokenClaims is the signed content of a verified location token.
type TokenClaims struct {
	InstallID string    `json:"installId"`
	UserID    string    `json:"userId,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Passed    bool      `json:"passed"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *SDK) GetVerifiedLocationToken(cb sdk.TokenCallback) {
	s.async(func() {
		loc, st := s.near(nil)
		if !st.OK() {
			s.fail("getVerifiedLocationToken", st)
			cb(st, nil)
			return
		}

		now := time.Now()
		s.mu.Lock()
		claims := TokenClaims{
			InstallID: s.installID,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Accuracy:  loc.Accuracy,
			Passed:    !s.location.Mocked && loc.Accuracy <= maxTokenAccuracy,
			IssuedAt:  now,
			ExpiresAt: now.Add(tokenTTL),
		}
		if !s.anonymous {
			claims.UserID = s.userID
		}
		user := s.userRecordLocked(loc, s.mockCancel == nil)
		r := s.receiver
		s.mu.Unlock()

		encoded, err := s.tokens.Encode(tokenName, claims)
		if err != nil {
			s.logger.Error("sign location token", "err", err)
			s.fail("getVerifiedLocationToken", sdk.StatusErrorServer)
			cb(sdk.StatusErrorServer, nil)
			return
		}

		token := sdk.Record{
			"token":     encoded,
			"passed":    claims.Passed,
			"expiresAt": claims.ExpiresAt.UTC().Format(time.RFC3339),
			"expiresIn": int(tokenTTL / time.Second),
			"user":      user,
		}
		if r != nil {
			r.OnTokenUpdated(token)
		}
		cb(sdk.StatusSuccess, token)
	})
}

// VerifyToken checks a token issued by GetVerifiedLocationToken and
// returns its claims.
func (s *SDK) VerifyToken(token string) (TokenClaims, error) {
	var claims TokenClaims
	if err := s.tokens.Decode(tokenName, token, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("sim: verify token: %w", err)
	}
	if time.Now().After(claims.ExpiresAt) {
		return TokenClaims{}, fmt.Errorf("sim: verify token: expired at %s", claims.ExpiresAt)
	}
	return claims, nil
}
