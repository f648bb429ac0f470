package services

import (
	"context"
	"time"

	"mataam/internal/core"

	"golang.org/x/sync/errgroup"
)

// StatsStore is the storage surface the analytics flow needs.
type StatsStore interface {
	ListOrders(ctx context.Context, from, to time.Time, limit int) ([]core.Order, error)
	ItemIndex(ctx context.Context) (map[string]core.ItemInfo, error)
	CategoryIndex(ctx context.Context) (map[string]core.CategoryInfo, error)
}

type StatsService struct {
	store StatsStore
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

// Compute loads the order window and both lookup indexes concurrently,
// then runs the aggregation engine over them.
func (s *StatsService) Compute(ctx context.Context, from, to time.Time) (core.Statistics, error) {
	var (
		orders     []core.Order
		items      map[string]core.ItemInfo
		categories map[string]core.CategoryInfo
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.store.ListOrders(ctx, from, to, 0)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.store.ItemIndex(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.CategoryIndex(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Statistics{}, err
	}

	return core.ComputeStatistics(orders, items, categories), nil
}
