package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setChecker map[string]bool

func (c setChecker) ExistsByNumber(_ context.Context, number string) (bool, error) {
	return c[number], nil
}

func TestNumberGenerator_Format(t *testing.T) {
	g := NewNumberGenerator(setChecker{})
	g.now = func() time.Time { return time.Date(2025, 9, 1, 10, 30, 0, 0, time.UTC) }

	number, err := g.Next(context.Background())
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-20250901-[0-9A-F]{8}$`, number)
}

func TestNumberGenerator_RetriesOnCollision(t *testing.T) {
	g := NewNumberGenerator(setChecker{"ORD-20250901-AAAAAAAA": true})
	g.now = func() time.Time { return time.Date(2025, 9, 1, 10, 30, 0, 0, time.UTC) }

	tokens := []string{"AAAAAAAA", "BBBBBBBB"}
	g.token = func() string {
		tok := tokens[0]
		tokens = tokens[1:]
		return tok
	}

	number, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250901-BBBBBBBB", number)
}

func TestNumberGenerator_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	g := NewNumberGenerator(setChecker{"ORD-20250901-AAAAAAAA": true})
	g.now = func() time.Time { return time.Date(2025, 9, 1, 10, 30, 0, 0, time.UTC) }
	g.token = func() string {
		calls++
		return "AAAAAAAA"
	}

	_, err := g.Next(context.Background())
	require.Error(t, err)
	assert.Equal(t, numberAttempts, calls)
}
