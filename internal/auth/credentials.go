package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"crimestats/internal/models"
)

// dummyHash is compared against when the user is unknown so both paths cost
// one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("crimestats-dummy"), bcrypt.DefaultCost)

// Credentials is an immutable username to bcrypt hash table.
type Credentials struct {
	hashes map[string][]byte
}

// NewCredentials copies users into a new table. Every hash must be a bcrypt hash.
func NewCredentials(users map[string]string) (*Credentials, error) {
	hashes := make(map[string][]byte, len(users))
	for name, hash := range users {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("user %q: password_hash is not a bcrypt hash: %w", name, err)
		}
		hashes[name] = []byte(hash)
	}
	return &Credentials{hashes: hashes}, nil
}

// Len returns the number of users.
func (c *Credentials) Len() int {
	return len(c.hashes)
}

// Authenticate checks a username and password pair.
func (c *Credentials) Authenticate(username, password string) (*models.Principal, error) {
	hash, ok := c.hashes[username]
	if !ok {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &models.Principal{Subject: username, Source: models.SourceLocal}, nil
}

// HashPassword returns a bcrypt hash suitable for the users file.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
