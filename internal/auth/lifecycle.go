package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// Accounts move between exactly two lifecycle states:
//
//	NORMAL      (must_change_password = false): all authorised
//	            operations permitted.
//	MUST_CHANGE (must_change_password = true):  only the
//	            credential-change operation is reachable; the Gate
//	            redirects everything else to it.
//
// ResetPassword is the only entry into MUST_CHANGE; a successful
// Gate.ChangePassword is the only exit. There are no terminal states.

// tempPasswordLength is the length of generated temporary passwords.
const tempPasswordLength = 10

// tempPasswordAlphabet is the character set for temporary passwords.
const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTempPassword returns a random password from a letters+digits
// alphabet, for handing to a player out of band after a reset.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, tempPasswordLength)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating temp password: %w", err)
		}
		buf[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ResetPassword replaces the target account's credential with a fresh
// temporary password and sets the forced-change flag, moving the
// account into MUST_CHANGE. The plaintext temporary password is
// returned once for out-of-band delivery and never stored.
func ResetPassword(ctx context.Context, users UserRepository, target *User) (string, error) {
	temp, err := GenerateTempPassword()
	if err != nil {
		return "", err
	}

	hash, err := HashPassword(temp)
	if err != nil {
		return "", fmt.Errorf("hashing temp password: %w", err)
	}

	if err := users.UpdatePassword(ctx, target.ID, hash, true); err != nil {
		return "", fmt.Errorf("storing temp password: %w", err)
	}
	target.PasswordHash = hash
	target.MustChangePassword = true

	return temp, nil
}
