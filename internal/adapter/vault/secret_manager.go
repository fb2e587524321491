// Package vault resolves runtime secrets (database credentials) from a
// HashiCorp Vault KV store instead of plain configuration, for deployments
// where pkg/config.Load's env/file values are placeholders.
package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

// SecretManager reads secrets from a Vault KV v2 mount.
type SecretManager struct {
	client *api.Client
}

// NewSecretManager authenticates against address using token.
func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

// GetDatabaseCredentials reads the connection string stored at
// secret/data/database.
func (sm *SecretManager) GetDatabaseCredentials() (string, error) {
	secret, err := sm.client.Logical().Read("secret/data/database")
	if err != nil {
		return "", fmt.Errorf("read database secret: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no database secret at secret/data/database")
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("malformed database secret payload")
	}
	connStr, ok := data["connection_string"].(string)
	if !ok {
		return "", fmt.Errorf("database secret missing connection_string")
	}
	return connStr, nil
}
