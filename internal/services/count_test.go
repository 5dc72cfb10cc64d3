package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamewars/internal/models"
	"flamewars/internal/services"
)

func TestCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.add(t, alice, "a.com/one", "1", "")
	f.add(t, bob, "a.com/one", "2", "")
	gone := f.add(t, alice, "a.com/one", "3", "")
	require.NoError(t, f.svc.Delete(ctx, alice, "a.com/one", gone.ID))
	f.add(t, alice, "a.com/two", "1", "")

	counts, err := f.svc.Count(ctx, []string{
		"https://a.com/one/",
		"a.com/one",
		"a.com/two",
		"a.com/none",
		"   ",
	})
	require.NoError(t, err)
	assert.Equal(t, []models.URLCount{
		{URL: "a.com/one", Count: 2},
		{URL: "a.com/two", Count: 1},
		{URL: "a.com/none", Count: 0},
	}, counts)
}

func TestCountLimit(t *testing.T) {
	f := newFixture(t)

	urls := make([]string, 51)
	for i := range urls {
		urls[i] = fmt.Sprintf("a.com/%d", i)
	}
	_, err := f.svc.Count(context.Background(), urls)
	assert.ErrorIs(t, err, services.ErrValidation)

	counts, err := f.svc.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
