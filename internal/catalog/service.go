package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nolalabs/analytics/internal/cache"
	"github.com/nolalabs/analytics/internal/common/logger"
)

// Service serves reference data through the cache with the long reference TTL:
// dimension tables change far less often than the fact data.
type Service interface {
	Stores(ctx context.Context) ([]Store, error)
	Channels(ctx context.Context) ([]Channel, error)
	Products(ctx context.Context, limit int) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

type service struct {
	repo  Repository
	cache *cache.Cache
	log   logger.Logger
}

func NewService(repo Repository, cacheClient *cache.Cache, log logger.Logger) Service {
	return &service{repo: repo, cache: cacheClient, log: log}
}

func (s *service) Stores(ctx context.Context) ([]Store, error) {
	const key = "stores:all"
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []Store
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, stores, cache.ReferenceTTL)
	return stores, nil
}

func (s *service) Channels(ctx context.Context) ([]Channel, error) {
	const key = "channels:all"
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []Channel
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	channels, err := s.repo.ListChannels(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, channels, cache.ReferenceTTL)
	return channels, nil
}

func (s *service) Products(ctx context.Context, limit int) ([]Product, error) {
	key := fmt.Sprintf("products:limit:%d", limit)
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []Product
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.repo.ListProducts(ctx, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, products, cache.ReferenceTTL)
	return products, nil
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	const key = "categories:all"
	if lookup := s.cache.Get(ctx, key); lookup.Found() {
		var cached []Category
		if err := json.Unmarshal(lookup.Value, &cached); err == nil {
			return cached, nil
		}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, categories, cache.ReferenceTTL)
	return categories, nil
}
