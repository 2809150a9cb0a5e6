package application_test

import (
	"context"
	"testing"
	"time"

	"sif-shopify-layer/internal/application"
	"sif-shopify-layer/internal/infrastructure/cache"
	"sif-shopify-layer/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testShop   = "demo.myshopify.com"
	testToken  = "shpat_test"
	testAppURL = "https://app.example.com"
	mainTheme  = uint64(100)
)

type fixture struct {
	storefront    *testutil.FakeStorefront
	storeRepo     *testutil.StoreRepository
	links         *testutil.AccountLinkRepository
	instances     *testutil.InstanceRepository
	placementRepo *testutil.PlacementRepository
	cache         *cache.InMemoryConfigCache
	metrics       *testutil.Metrics

	stores     *application.StoreService
	placements *application.PlacementService
	scriptTags *application.ScriptTagService
	config     *application.ConfigService
	accounts   *application.AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &fixture{
		storefront:    testutil.NewFakeStorefront(mainTheme),
		storeRepo:     testutil.NewStoreRepository(),
		links:         testutil.NewAccountLinkRepository(),
		instances:     &testutil.InstanceRepository{},
		placementRepo: testutil.NewPlacementRepository(),
		cache:         cache.NewInMemoryConfigCache(30 * time.Second),
		metrics:       &testutil.Metrics{},
	}

	f.stores = application.NewStoreService(
		f.storeRepo,
		f.links,
		f.placementRepo,
		f.cache,
		testutil.PlainEncryption{},
		f.storefront,
		logger,
		testAppURL+"/webhooks",
	)
	f.placements = application.NewPlacementService(f.stores, f.storefront, f.placementRepo, f.metrics, logger)
	f.scriptTags = application.NewScriptTagService(f.stores, f.storefront, f.placementRepo, f.metrics, logger, testAppURL)
	f.config = application.NewConfigService(f.storeRepo, f.links, f.cache, f.metrics, logger)
	f.accounts = application.NewAccountService(
		f.storeRepo,
		f.links,
		f.instances,
		f.config,
		f.placements,
		f.scriptTags,
		logger,
	)
	return f
}

// install records testShop as installed
func (f *fixture) install(t *testing.T) {
	t.Helper()
	_, err := f.stores.Install(context.Background(), testShop, testToken, []string{"write_themes"})
	require.NoError(t, err)
	f.storefront.ResetCalls()
}
