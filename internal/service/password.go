package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Supported values of PASSWORD_HASHER.
const (
	HasherBcrypt = "bcrypt"
	HasherSHA256 = "sha256"
)

// PasswordHasher turns passwords into stored hashes and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash, and whether the stored
	// hash should be replaced with a fresh one from Hash.
	Verify(hash, password string) (ok bool, needsRehash bool)
}

// NewPasswordHasher returns the hasher named by PASSWORD_HASHER.
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", HasherBcrypt:
		return &bcryptHasher{cost: bcrypt.DefaultCost}, nil
	case HasherSHA256:
		return sha256Hasher{}, nil
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", name)
	}
}

type bcryptHasher struct {
	cost int
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify also accepts legacy unsalted SHA-256 digests, flagging them for rehash.
func (h *bcryptHasher) Verify(hash, password string) (bool, bool) {
	if isLegacyDigest(hash) {
		return sha256Hasher{}.matches(hash, password), true
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, false
	}
	cost, err := bcrypt.Cost([]byte(hash))
	return true, err == nil && cost < h.cost
}

// sha256Hasher stores the hex SHA-256 digest of the password with no salt.
// It exists for databases that must stay readable by older deployments.
type sha256Hasher struct{}

func (sha256Hasher) Hash(password string) (string, error) {
	return sha256Hex(password), nil
}

func (h sha256Hasher) Verify(hash, password string) (bool, bool) {
	return h.matches(hash, password), false
}

func (sha256Hasher) matches(hash, password string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(sha256Hex(password))) == 1
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func isLegacyDigest(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
