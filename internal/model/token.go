package model

import "time"

// Token models a row of the `tokens` table holding refresh tokens
// for the web surface.  Only the SHA-256 hash of the raw token is
// stored.  Revocation is an explicit flag so that sessions survive
// process restarts and can be killed from the admin dashboard.
type Token struct {
	ID        uint64     // tokens.token_id
	MemberID  uint64     // tokens.member_id
	TokenHash string     // tokens.token_hash
	ExpiresAt time.Time  // tokens.expires_at
	RevokedAt *time.Time // tokens.revoked_at (nullable)
	CreatedAt time.Time  // tokens.created_at
}
