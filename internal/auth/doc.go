// Package auth provides authentication and authorisation for Chronicle Core.
//
// It implements a 2-role model (player, master) with:
//   - PBKDF2-HMAC-SHA256 password hashing in a self-describing digest
//     format, so iteration counts can be raised without invalidating
//     stored digests
//   - Signed, time-limited session tokens (HS256) whose validity window
//     is supplied by the reader, not baked into the token
//   - A single Gate through which every protected operation resolves its
//     token, loads the account, and passes role and lifecycle checks
//   - A forced-password-change lifecycle: accounts flagged by a master
//     reset can only reach the credential-change operation until they
//     submit a new password
//
// Roles are exact-match tags rather than a hierarchy. The master's
// access to player sheets goes through the explicit on-behalf-of
// capability on the Gate, never through implicit privilege inheritance.
package auth
