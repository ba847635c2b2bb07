package service

import (
	"context"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guestlink/constant"
	"guestlink/internal/model"
)

type mapFetcher map[string]Metadata

func (m mapFetcher) Fetch(_ context.Context, target string) Metadata {
	if meta, ok := m[target]; ok {
		return meta
	}
	return noMetadata()
}

func TestBackfillReplacesOnlySentinels(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []model.GuestURL{
		{URL: "https://a.example", ShortURL: "aaaaaaaa", Title: constant.NoTitle, Logo: constant.NoLogo},
		{URL: "https://b.example", ShortURL: "bbbbbbbb", Title: "Kept title", Logo: constant.NoLogo},
		{URL: "https://c.example", ShortURL: "cccccccc", Title: constant.NoTitle, Logo: constant.NoLogo},
		{URL: "https://d.example", ShortURL: "dddddddd", Title: "Done", Logo: "https://d.example/i.png"},
	}
	for i := range seed {
		require.NoError(t, store.Create(ctx, &seed[i]))
	}

	fetcher := mapFetcher{
		"https://a.example": {Title: "A", Logo: "https://a.example/favicon.ico"},
		"https://b.example": {Title: "B fetched", Logo: "https://b.example/favicon.ico"},
	}
	job := NewBackfillService(store, fetcher, zap.NewNop(), 10)

	improved, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, improved)

	a, err := store.FindByCode(ctx, "aaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, "https://a.example/favicon.ico", a.Logo)

	b, err := store.FindByCode(ctx, "bbbbbbbb")
	require.NoError(t, err)
	assert.Equal(t, "Kept title", b.Title)
	assert.Equal(t, "https://b.example/favicon.ico", b.Logo)

	c, err := store.FindByCode(ctx, "cccccccc")
	require.NoError(t, err)
	assert.Equal(t, constant.NoTitle, c.Title)
	assert.Equal(t, seed[2].UpdatedAt.Unix(), c.UpdatedAt.Unix())
	require.NotNil(t, c.MetadataCheckedAt)
	assert.True(t, a.UpdatedAt.After(seed[0].UpdatedAt))

	d, err := store.FindByCode(ctx, "dddddddd")
	require.NoError(t, err)
	assert.Equal(t, seed[3].UpdatedAt.Unix(), d.UpdatedAt.Unix())
}

func TestBackfillRotatesUnfixableRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, code := range []string{"xxxxxxx1", "xxxxxxx2"} {
		require.NoError(t, store.Create(ctx, &model.GuestURL{
			URL: "https://" + code + ".example", ShortURL: code, Title: constant.NoTitle, Logo: constant.NoLogo,
		}))
	}

	job := NewBackfillService(store, mapFetcher{}, zap.NewNop(), 1)

	_, err := job.RunOnce(ctx)
	require.NoError(t, err)
	pending, err := store.ListMissingMetadata(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "xxxxxxx2", pending[0].ShortURL)
}

func TestBackfillSchedule(t *testing.T) {
	job := NewBackfillService(newTestStore(t), mapFetcher{}, zap.NewNop(), 0)
	c := cron.New()

	id, err := job.Schedule(c, "*/10 * * * *")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = job.Schedule(c, "not a spec")
	assert.Error(t, err)
}
