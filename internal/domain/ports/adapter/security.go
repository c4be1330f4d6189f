package adapter

import (
	"time"

	"cledumemoire/internal/domain/model"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// Cipher encrypts short texts at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// TokenIssuer mints access/refresh credentials for a user.
type TokenIssuer interface {
	Issue(u *model.User) (*TokenPair, error)
	// ParseRefresh validates a refresh token and returns its user id.
	ParseRefresh(token string) (string, error)
}
