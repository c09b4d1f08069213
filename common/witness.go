package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized appears when the method must be called by an owner
	// of some assets but was not.
	ErrUnauthorized = errors.New("owner witness check failed")
)

// Witness checks whether the current execution is authorized to act on
// behalf of the owner.
type Witness interface {
	CheckWitness(Owner) bool
}

// CheckOwnerWitness checks witness of the passed owner. It returns an error
// wrapping ErrUnauthorized on fail.
func CheckOwnerWitness(w Witness, owner Owner) error {
	if !w.CheckWitness(owner) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, owner)
	}
	return nil
}
