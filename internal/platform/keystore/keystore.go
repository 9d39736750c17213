// internal/platform/keystore/keystore.go
//
// Package keystore loads API credentials for authenticated sources from a
// keys file. The file maps source names to either a plain API key or a
// key/secret pair:
//
//	chaos: "my-chaos-key"
//	censys:
//	  id: "api-id"
//	  secret: "api-secret"
//
// YAML is a superset of JSON, so JSON keys files parse unchanged.
package keystore

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"subsweep/internal/core/domain"
	"subsweep/internal/platform/errors"
)

// Store holds credentials indexed by source name.
type Store struct {
	creds map[string]domain.Credential
}

// entry accepts either a scalar API key or an id/secret mapping.
type entry struct {
	cred domain.Credential
}

func (e *entry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e.cred = domain.Credential{Key: strings.TrimSpace(value.Value)}
		return nil
	}

	var pair struct {
		ID     string `yaml:"id"`
		Key    string `yaml:"key"`
		Secret string `yaml:"secret"`
	}
	if err := value.Decode(&pair); err != nil {
		return err
	}

	key := pair.ID
	if key == "" {
		key = pair.Key
	}
	e.cred = domain.Credential{
		Key:    strings.TrimSpace(key),
		Secret: strings.TrimSpace(pair.Secret),
	}
	return nil
}

// Empty returns a store with no credentials.
func Empty() *Store {
	return &Store{creds: make(map[string]domain.Credential)}
}

// Load reads and parses a keys file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading keys file %s", path)
	}
	return Parse(data)
}

// Parse builds a store from raw keys file content.
func Parse(data []byte) (*Store, error) {
	raw := make(map[string]entry)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing keys file")
	}

	creds := make(map[string]domain.Credential, len(raw))
	for name, e := range raw {
		if e.cred.IsZero() {
			continue
		}
		creds[strings.ToLower(strings.TrimSpace(name))] = e.cred
	}
	return &Store{creds: creds}, nil
}

// Get returns the credential registered for a source, if any.
func (s *Store) Get(source string) (domain.Credential, bool) {
	if s == nil || s.creds == nil {
		return domain.Credential{}, false
	}
	cred, ok := s.creds[strings.ToLower(source)]
	return cred, ok
}

// Len reports how many sources have credentials.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.creds)
}
