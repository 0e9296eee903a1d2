package ports

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and validates JWTs.
type TokenIssuer interface {
	IssueAccessToken(userID string, expiresInSeconds int64) (string, error)
	IssueRefreshToken(userID string, expiresInSeconds int64) (string, error)
	// ValidateAccessToken returns the user ID carried by a valid access token.
	ValidateAccessToken(tokenString string) (userID string, err error)
	// ValidateRefreshToken returns the user ID carried by a valid refresh token.
	ValidateRefreshToken(tokenString string) (userID string, err error)
}
