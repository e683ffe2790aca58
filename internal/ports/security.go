package ports

// PasswordHasher hashes the initial credential stored on a provisioned user.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
