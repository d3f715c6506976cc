package backend

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smileynet/contacts/internal/contact"
)

func TestReadSeed(t *testing.T) {
	drafts, err := ReadSeed(strings.NewReader(`[
		{"id": 1, "name": "Ada", "email": "ada@example.com", "phone": "555-0100"},
		{"name": "Linus", "phone": "555-0101"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []contact.Draft{
		{Name: "Ada", Email: "ada@example.com", Phone: "555-0100"},
		{Name: "Linus", Phone: "555-0101"},
	}, drafts)
}

func TestReadSeed_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"not json", `nope`, "backend: decoding seed"},
		{"missing phone", `[{"name": "A"}]`, "backend: seed entry 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSeed(strings.NewReader(tt.in))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSeed_OnlyIntoEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithIDFunc(seqIDs()))
	drafts := []contact.Draft{{Name: "A", Phone: "1"}, {Name: "B", Phone: "2"}}

	n, err := Seed(ctx, s, drafts)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Seed(ctx, s, drafts)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
