// internal/core/domain/credential.go
package domain

// Credential is an opaque API credential for one source. Most providers use
// a single key; a few (censys) use an id/secret pair carried in Key/Secret.
// The zero value means "no credential".
type Credential struct {
	Key    string
	Secret string
}

// IsZero reports whether no credential material is present.
func (c Credential) IsZero() bool {
	return c.Key == "" && c.Secret == ""
}
