package password

import "golang.org/x/crypto/bcrypt"

// Comparer is the opaque password-check capability the auth service consumes.
type Comparer interface {
	Compare(plain, hash string) bool
}

type BcryptComparer struct{}

func NewBcryptComparer() *BcryptComparer { return &BcryptComparer{} }

func (BcryptComparer) Compare(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Hash is used by seeding and tests, not by the request path.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
