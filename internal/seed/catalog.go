// Package seed loads fixture users and cards from a YAML catalog.
package seed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/ledger"
)

type Catalog struct {
	Users []UserEntry `yaml:"users"`
}

type UserEntry struct {
	Username string      `yaml:"username"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Balance  int64       `yaml:"balance"`
	Cards    []CardEntry `yaml:"cards"`
}

type CardEntry struct {
	Name string `yaml:"name"`
	// Price is omitted for cards that are not listed.
	Price    *int64         `yaml:"price"`
	Metadata map[string]any `yaml:"metadata"`
}

func (c CardEntry) price() int64 {
	if c.Price == nil {
		return types.NotForSale
	}
	return *c.Price
}

func (c CardEntry) metadata() ([]byte, error) {
	if len(c.Metadata) == 0 {
		return nil, nil
	}
	return json.Marshal(c.Metadata)
}

// ParseCatalog decodes and validates a catalog. Unknown fields are rejected.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) validate() error {
	seen := map[string]bool{}
	for i, u := range c.Users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			return fmt.Errorf("users[%d]: username is required", i)
		}
		if seen[name] {
			return fmt.Errorf("users[%d]: duplicate username %q", i, name)
		}
		seen[name] = true
		if u.Balance < 0 {
			return fmt.Errorf("users[%d]: balance must not be negative", i)
		}
		if u.Password == "" {
			return fmt.Errorf("users[%d]: password is required", i)
		}
		for j, card := range u.Cards {
			if strings.TrimSpace(card.Name) == "" {
				return fmt.Errorf("users[%d].cards[%d]: name is required", i, j)
			}
			if !ledger.ValidListingPrice(card.price()) {
				return fmt.Errorf("users[%d].cards[%d]: %w", i, j, ledger.ErrInvalidPrice)
			}
		}
	}
	return nil
}
