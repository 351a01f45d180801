package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher with the given cost, bcrypt.DefaultCost for 0.
func NewBcrypt(cost int) Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{cost: cost}
}

func (b Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", core.ErrUserInvalidArgs
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (b Bcrypt) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
