// Package domain defines the principal namespaces and the credential boundary
// this subsystem consumes. Account CRUD itself lives outside this service.
package domain

// Type identifies which principal namespace an account belongs to.
type Type string

const (
	TypeTenant      Type = "tenant_account"
	TypeEnvironment Type = "environment_account"
)

// Valid reports whether t is a known account type.
func (t Type) Valid() bool {
	return t == TypeTenant || t == TypeEnvironment
}

// Credential is the slice of an account this subsystem is allowed to see:
// the principal id and its stored password hash.
type Credential struct {
	AccountID    string
	PasswordHash string
}
