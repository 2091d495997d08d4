package enums

import "fmt"

// Identity classifies the current actor: an anonymous guest carrying an
// opaque cart token, or an authenticated user carrying a bearer token.
type Identity string

const (
	IdentityGuest         Identity = "guest"
	IdentityAuthenticated Identity = "authenticated"
)

var validIdentities = []Identity{
	IdentityGuest,
	IdentityAuthenticated,
}

// String implements fmt.Stringer.
func (i Identity) String() string {
	return string(i)
}

// IsValid reports whether the value is a known Identity.
func (i Identity) IsValid() bool {
	for _, candidate := range validIdentities {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIdentity converts raw input into an Identity.
func ParseIdentity(value string) (Identity, error) {
	for _, candidate := range validIdentities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid identity %q", value)
}
