package services

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/patrickmn/go-cache"
)

var ErrInvalidResetCode = errors.New("invalid or expired reset code")

// maxResetAttempts wrong guesses burn the pending code.
const maxResetAttempts = 5

// ResetCodes keeps one pending password reset code per email in memory.
type ResetCodes struct {
	cache    *cache.Cache
	attempts *cache.Cache
	ttl      time.Duration
}

func NewResetCodes(ttl time.Duration) *ResetCodes {
	return &ResetCodes{cache: cache.New(ttl, 2*ttl), attempts: cache.New(ttl, 2*ttl), ttl: ttl}
}

func (r *ResetCodes) TTL() time.Duration { return r.ttl }

// Issue replaces any previous code for email with a fresh six digit code.
func (r *ResetCodes) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)
	r.cache.Set(email, code, cache.DefaultExpiration)
	r.attempts.Set(email, 0, cache.DefaultExpiration)
	return code, nil
}

func (r *ResetCodes) Verify(email, code string) error {
	v, ok := r.cache.Get(email)
	if !ok {
		return ErrInvalidResetCode
	}
	if subtle.ConstantTimeCompare([]byte(v.(string)), []byte(code)) != 1 {
		r.recordMiss(email)
		return ErrInvalidResetCode
	}
	return nil
}

func (r *ResetCodes) recordMiss(email string) {
	_ = r.attempts.Add(email, 0, cache.DefaultExpiration)
	n, err := r.attempts.IncrementInt(email, 1)
	if err != nil || n >= maxResetAttempts {
		r.Consume(email)
	}
}

func (r *ResetCodes) Consume(email string) {
	r.cache.Delete(email)
	r.attempts.Delete(email)
}
