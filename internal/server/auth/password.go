package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/dbsauth/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// BcryptCost is the work factor for every stored password hash.
const BcryptCost = 10

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt. At most one hash per available
// CPU runs at a time; waiting callers give up when their context ends.
type BcryptHasher struct {
	cost  int
	slots *semaphore.Weighted
}

func NewBcryptHasher() *BcryptHasher {
	return newBcryptHasher(BcryptCost, runtime.GOMAXPROCS(0))
}

func newBcryptHasher(cost, slots int) *BcryptHasher {
	return &BcryptHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(slots)),
	}
}

// Hash returns a salted bcrypt hash of password.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", common.ErrPasswordTooLong
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// an unparseable hash is common.ErrMalformedHash.
func (h *BcryptHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrMalformedHash, err)
	}
}
