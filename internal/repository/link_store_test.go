package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"guestlink/constant"
	"guestlink/internal/config"
	"guestlink/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDB(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "store.db"),
	}, zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = CloseDB(db)
	})
	return db
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDB(config.DatabaseConfig{Driver: "oracle", DSN: "x"}, zap.NewNop(), gormlogger.Silent)
	assert.Error(t, err)
}

func TestPingDB(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, PingDB(context.Background(), db))
}

func TestCreateAssignsIDAndRejectsDuplicateCode(t *testing.T) {
	store := NewGormLinkStore(openTestDB(t))
	ctx := context.Background()

	first := &model.GuestURL{URL: "https://example.com", ShortURL: "abcdEFGH"}
	require.NoError(t, store.Create(ctx, first))
	assert.Len(t, first.ID, 36)
	assert.False(t, first.CreatedAt.IsZero())

	dup := &model.GuestURL{URL: "https://example.org", ShortURL: "abcdEFGH"}
	assert.ErrorIs(t, store.Create(ctx, dup), ErrDuplicateCode)

	// 短码区分大小写
	require.NoError(t, store.Create(ctx, &model.GuestURL{URL: "https://example.org", ShortURL: "ABCDefgh"}))
}

func TestFindByCodeAndID(t *testing.T) {
	store := NewGormLinkStore(openTestDB(t))
	ctx := context.Background()

	link := &model.GuestURL{URL: "https://example.com", ShortURL: "find1234", Title: "t", Logo: "l"}
	require.NoError(t, store.Create(ctx, link))

	byCode, err := store.FindByCode(ctx, "find1234")
	require.NoError(t, err)
	assert.Equal(t, link.ID, byCode.ID)
	assert.Equal(t, "https://example.com", byCode.URL)
	assert.False(t, bool(byCode.UseLanding))

	byID, err := store.FindByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "find1234", byID.ShortURL)

	_, err = store.FindByCode(ctx, "missing1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.FindByCode(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.FindByID(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLandingFlagIsStoredAsText(t *testing.T) {
	db := openTestDB(t)
	store := NewGormLinkStore(db)
	ctx := context.Background()

	link := &model.GuestURL{URL: "https://example.com", ShortURL: "text1234"}
	require.NoError(t, store.Create(ctx, link))

	var raw string
	require.NoError(t, db.Raw(`SELECT useLanding FROM guesturl WHERE id = ?`, link.ID).Scan(&raw).Error)
	assert.Equal(t, "false", raw)

	updated, err := store.UpdateLandingFlagByCode(ctx, "text1234", true)
	require.NoError(t, err)
	assert.True(t, bool(updated.UseLanding))

	require.NoError(t, db.Raw(`SELECT useLanding FROM guesturl WHERE id = ?`, link.ID).Scan(&raw).Error)
	assert.Equal(t, "true", raw)
}

func TestUpdateLandingFlagBumpsUpdatedAt(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store := NewGormLinkStore(openTestDB(t)).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()

	link := &model.GuestURL{URL: "https://example.com", ShortURL: "bump1234"}
	require.NoError(t, store.Create(ctx, link))

	a, err := store.UpdateLandingFlagByID(ctx, link.ID, false)
	require.NoError(t, err)
	b, err := store.UpdateLandingFlagByID(ctx, link.ID, false)
	require.NoError(t, err)

	assert.True(t, a.UpdatedAt.After(link.UpdatedAt))
	assert.True(t, b.UpdatedAt.After(a.UpdatedAt))
	assert.Equal(t, link.CreatedAt.Unix(), b.CreatedAt.Unix())

	_, err = store.UpdateLandingFlagByID(ctx, "00000000-0000-0000-0000-000000000000", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.UpdateLandingFlagByCode(ctx, "", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkMetadataCheckedKeepsUpdatedAt(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store := NewGormLinkStore(openTestDB(t)).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()

	older := &model.GuestURL{URL: "https://a.example", ShortURL: "meta0001", Title: constant.NoTitle, Logo: constant.NoLogo}
	newer := &model.GuestURL{URL: "https://b.example", ShortURL: "meta0002", Title: constant.NoTitle, Logo: constant.NoLogo}
	require.NoError(t, store.Create(ctx, older))
	require.NoError(t, store.Create(ctx, newer))

	pending, err := store.ListMissingMetadata(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "meta0001", pending[0].ShortURL)

	require.NoError(t, store.MarkMetadataChecked(ctx, older.ID))

	got, err := store.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.UpdatedAt.Unix(), got.UpdatedAt.Unix())
	require.NotNil(t, got.MetadataCheckedAt)

	pending, err = store.ListMissingMetadata(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "meta0002", pending[0].ShortURL)

	require.NoError(t, store.UpdateMetadata(ctx, newer.ID, "B", constant.NoLogo))
	got, err = store.FindByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Title)
	assert.True(t, got.UpdatedAt.After(newer.UpdatedAt))
}
