// Package password hashes account passwords with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost mirrors the HASH_ROUNDS default.
const DefaultCost = 10

// Hasher is the one-way hash capability used at registration.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// Bcrypt implements Hasher with a fixed cost factor.
type Bcrypt struct {
	cost int
}

// NewBcrypt clamps cost into bcrypt's accepted range; 0 selects DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Cost() int {
	return b.cost
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password: empty password")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (b *Bcrypt) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
