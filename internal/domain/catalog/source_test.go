package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog/mock"
)

var feedCards = []catalog.Card{
	{ID: "base1-1", Name: "Alakazam", Number: "1", Rarity: "Rare Holo"},
	{ID: "base1-2", Name: "Blastoise", Number: "2", Rarity: "Rare Holo"},
}

func TestSource_RefreshFromFeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mock.NewMockFeed(ctrl)
	store := mock.NewMockSnapshotStore(ctrl)

	feed.EXPECT().FetchCards(gomock.Any()).Return(feedCards, nil)
	store.EXPECT().SaveSnapshot(gomock.Any(), gomock.Len(2)).Return(nil)

	src := catalog.NewSource(feed, catalog.WithSnapshotStore(store))
	info, err := src.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, catalog.OriginFeed, info.Origin)
	assert.Equal(t, 2, src.Current().Len())
}

func TestSource_FallbackChain(t *testing.T) {
	feedErr := errors.New("connection refused")

	tests := []struct {
		name       string
		snapshot   []catalog.Card
		snapErr    error
		seed       bool
		wantOrigin catalog.Origin
		wantSize   int
	}{
		{
			name:       "cached snapshot",
			snapshot:   feedCards[:1],
			wantOrigin: catalog.OriginCache,
			wantSize:   1,
		},
		{
			name:       "seed when cache empty",
			seed:       true,
			wantOrigin: catalog.OriginSeed,
			wantSize:   len(catalog.SeedCards()),
		},
		{
			name:       "seed when cache fails",
			snapErr:    errors.New("bucket missing"),
			seed:       true,
			wantOrigin: catalog.OriginSeed,
			wantSize:   len(catalog.SeedCards()),
		},
		{
			name:       "empty catalog",
			wantOrigin: catalog.OriginEmpty,
			wantSize:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			feed := mock.NewMockFeed(ctrl)
			store := mock.NewMockSnapshotStore(ctrl)

			feed.EXPECT().FetchCards(gomock.Any()).Return(nil, feedErr)
			store.EXPECT().LoadSnapshot(gomock.Any()).Return(tt.snapshot, tt.snapErr)

			var hooked catalog.Info
			src := catalog.NewSource(feed,
				catalog.WithSnapshotStore(store),
				catalog.WithSeed(tt.seed),
				catalog.WithLoadHook(func(info catalog.Info, _ error) { hooked = info }),
			)

			info, err := src.Refresh(context.Background())
			assert.ErrorIs(t, err, feedErr)
			assert.Equal(t, tt.wantOrigin, info.Origin)
			assert.Equal(t, tt.wantSize, src.Current().Len())
			assert.Equal(t, info, hooked)
		})
	}
}

func TestSource_KeepsStaleCatalogOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mock.NewMockFeed(ctrl)

	gomock.InOrder(
		feed.EXPECT().FetchCards(gomock.Any()).Return(feedCards, nil),
		feed.EXPECT().FetchCards(gomock.Any()).Return(nil, errors.New("timeout")),
	)

	src := catalog.NewSource(feed)
	_, err := src.Refresh(context.Background())
	require.NoError(t, err)

	held := src.Current()
	info, err := src.Refresh(context.Background())

	assert.Error(t, err)
	assert.Equal(t, catalog.OriginFeed, info.Origin)
	assert.Same(t, held, src.Current())
}

func TestSource_EmptyFeedIsAFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mock.NewMockFeed(ctrl)
	feed.EXPECT().FetchCards(gomock.Any()).Return([]catalog.Card{}, nil)

	src := catalog.NewSource(feed, catalog.WithSeed(true))
	info, err := src.Refresh(context.Background())

	assert.Error(t, err)
	assert.Equal(t, catalog.OriginSeed, info.Origin)
}

func TestSource_OfflineUsesSeed(t *testing.T) {
	src := catalog.NewSource(nil, catalog.WithSeed(true))
	info, err := src.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, catalog.OriginSeed, info.Origin)
	_, err = src.Current().Get("pikachu")
	assert.NoError(t, err)
}

func TestSource_ConcurrentReadersDuringRefresh(t *testing.T) {
	src := catalog.NewSource(nil, catalog.WithSeed(true))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = src.Refresh(context.Background())
		}()
		go func() {
			defer wg.Done()
			_ = src.Current().All()
		}()
	}
	wg.Wait()

	assert.Equal(t, len(catalog.SeedCards()), src.Current().Len())
}
