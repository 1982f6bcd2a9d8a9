package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/sirpyerre/taskboard/internal/core/domain"
)

const csrfNonceSize = 16

// CSRFService mints double-submit tokens of the form
// base64url(nonce || HMAC-SHA256(secret, session jti || 0x00 || nonce)).
// A token only verifies for the session it was minted for.
type CSRFService struct {
	secret []byte
}

func NewCSRFService(secret string) *CSRFService {
	return &CSRFService{secret: []byte(secret)}
}

func (s *CSRFService) Issue(session *domain.Session) (string, error) {
	if session == nil || session.TokenID == "" {
		return "", domain.ErrUnauthenticated
	}

	nonce := make([]byte, csrfNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("csrf nonce: %w", err)
	}

	token := make([]byte, 0, csrfNonceSize+sha256.Size)
	token = append(token, nonce...)
	token = append(token, s.sign(session.TokenID, nonce)...)
	return base64.RawURLEncoding.EncodeToString(token), nil
}

func (s *CSRFService) Verify(session *domain.Session, token string) error {
	if session == nil || session.TokenID == "" || token == "" {
		return domain.ErrCSRFValidation
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != csrfNonceSize+sha256.Size {
		return domain.ErrCSRFValidation
	}

	nonce, sig := raw[:csrfNonceSize], raw[csrfNonceSize:]
	if !hmac.Equal(sig, s.sign(session.TokenID, nonce)) {
		return domain.ErrCSRFValidation
	}
	return nil
}

func (s *CSRFService) sign(tokenID string, nonce []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(tokenID))
	h.Write([]byte{0})
	h.Write(nonce)
	return h.Sum(nil)
}
