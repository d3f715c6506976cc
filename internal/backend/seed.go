package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/smileynet/contacts/internal/contact"
)

// ReadSeed decodes a JSON array of contacts into drafts. Ids in the input
// are ignored; the store assigns its own.
func ReadSeed(r io.Reader) ([]contact.Draft, error) {
	var cs []contact.Contact
	if err := json.NewDecoder(r).Decode(&cs); err != nil {
		return nil, fmt.Errorf("backend: decoding seed: %w", err)
	}
	drafts := make([]contact.Draft, 0, len(cs))
	for i, c := range cs {
		d := c.Draft()
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("backend: seed entry %d: %w", i, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// Seed creates drafts in s if s is empty. It returns the number created.
func Seed(ctx context.Context, s Store, drafts []contact.Draft) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, d := range drafts {
		if _, err := s.Create(ctx, d); err != nil {
			return i, fmt.Errorf("backend: seeding: %w", err)
		}
	}
	return len(drafts), nil
}
