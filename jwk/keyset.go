package jwk

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// KeySet is a JWK Set
type KeySet struct {
	Keys []Key `json:"keys"`
}

type wireKeySet struct {
	Keys []json.RawMessage `json:"keys"`
}

// ParseKeySet decodes JWK Set from JSON.
// A key with unsupported kty fails the whole set.
func ParseKeySet(data []byte) (*KeySet, error) {
	var w wireKeySet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.WithMessage(ErrInvalidKey, err.Error())
	}
	if w.Keys == nil {
		return nil, errors.WithMessage(ErrInvalidKey, "missing keys")
	}

	set := &KeySet{Keys: make([]Key, 0, len(w.Keys))}
	for i, raw := range w.Keys {
		k, err := Parse(raw)
		if err != nil {
			return nil, errors.WithMessagef(err, "key %d", i)
		}
		set.Keys = append(set.Keys, k)
	}
	return set, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *KeySet) UnmarshalJSON(data []byte) error {
	set, err := ParseKeySet(data)
	if err != nil {
		return err
	}
	*s = *set
	return nil
}

// LoadKeySet returns JWK Set loaded from a JSON or YAML file
func LoadKeySet(file string) (*KeySet, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to read file")
	}

	if strings.HasSuffix(file, ".yaml") || strings.HasSuffix(file, ".yml") {
		var doc map[string]any
		if err = yaml.Unmarshal(raw, &doc); err != nil {
			return nil, errors.WithMessagef(err, "unable parse YAML: %s", file)
		}
		raw, err = json.Marshal(doc)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable convert YAML: %s", file)
		}
	}

	set, err := ParseKeySet(raw)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable parse JWKS: %s", file)
	}
	return set, nil
}

// Find returns the key by ID.
// With empty kid the only key of the set is returned.
func (s *KeySet) Find(kid string) (Key, error) {
	if kid == "" {
		if len(s.Keys) == 1 {
			return s.Keys[0], nil
		}
		return nil, errors.Errorf("kid is required to select one of %d keys", len(s.Keys))
	}
	for _, k := range s.Keys {
		if k.ID() == kid {
			return k, nil
		}
	}
	return nil, errors.Errorf("key not found: %s", kid)
}
