// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinHashCost is the weakest bcrypt cost accepted for a configured admin hash.
const MinHashCost = bcrypt.DefaultCost

// ErrWeakHash is returned by [ValidateHash] for hashes below [MinHashCost].
var ErrWeakHash = errors.New("sec: bcrypt cost below minimum")

// HashPassword hashes a plain-text password with bcrypt at [MinHashCost].
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), MinHashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash reports whether plainTextPassword matches existingHash.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword)) == nil
}

// ValidateHash checks that a configured hash is a bcrypt hash of acceptable cost.
func ValidateHash(hash string) error {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return fmt.Errorf("sec: invalid bcrypt hash: %w", err)
	}
	if cost < MinHashCost {
		return ErrWeakHash
	}
	return nil
}
