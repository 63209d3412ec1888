package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvClientID     = "YTRELINK_CLIENT_ID"
	EnvClientSecret = "YTRELINK_CLIENT_SECRET"
	EnvRefreshToken = "YTRELINK_REFRESH_TOKEN"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and suits CI, where no keychain exists.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve builds a credential from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	clientID := os.Getenv(EnvClientID)
	refreshToken := os.Getenv(EnvRefreshToken)

	if clientID == "" || refreshToken == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = "env"
	}

	return &Credential{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: os.Getenv(EnvClientSecret),
		RefreshToken: refreshToken,
		LastModified: time.Now(),
	}, nil
}

// List returns a single credential if the environment variables are set
func (e *EnvironmentStore) List() ([]*Credential, error) {
	cred, err := e.Retrieve("")
	if err != nil {
		return []*Credential{}, nil
	}
	return []*Credential{cred}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(EnvClientID) != "" && os.Getenv(EnvRefreshToken) != ""
}
