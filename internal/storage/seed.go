package storage

import (
	"context"
	"fmt"
	"log/slog"

	"mataam/internal/core"
)

// Seed populates an empty database with the starter menu. It refuses to
// run when categories already exist so a stray call cannot duplicate
// the menu.
func (r *SQLiteRepository) Seed(ctx context.Context) error {
	existing, err := r.ListCategories(ctx, false)
	if err != nil {
		return fmt.Errorf("check existing categories: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("database already has %d categories", len(existing))
	}

	type seedItem struct {
		name, nameEn string
		priceSAR     float64
		costSAR      float64
	}
	seed := []struct {
		name, nameEn, icon string
		items              []seedItem
	}{
		{"المشويات", "Grills", "🔥", []seedItem{
			{"كباب لحم", "Meat Kebab", 35, 14},
			{"شيش طاووق", "Shish Tawook", 28, 10},
			{"ريش غنم", "Lamb Chops", 55, 26},
		}},
		{"المقبلات", "Appetizers", "🥗", []seedItem{
			{"حمص", "Hummus", 12, 3},
			{"متبل", "Mutabbal", 12, 3},
			{"عرايس", "Arayes", 18, 7},
		}},
		{"المشروبات", "Drinks", "🥤", []seedItem{
			{"شاي كرك", "Karak Tea", 5, 1},
			{"عصير ليمون نعناع", "Mint Lemonade", 10, 2},
			{"مياه", "Water", 2, 0.5},
		}},
	}

	for ci, sc := range seed {
		cat, err := r.CreateCategory(ctx, core.Category{
			Name:      sc.name,
			NameEn:    sc.nameEn,
			Icon:      sc.icon,
			SortOrder: int64(ci),
			Status:    core.StatusActive,
		})
		if err != nil {
			return fmt.Errorf("seed category %q: %w", sc.nameEn, err)
		}
		for ii, si := range sc.items {
			_, err := r.CreateItem(ctx, core.MenuItem{
				Name:       si.name,
				NameEn:     si.nameEn,
				CategoryID: cat.ID,
				Price:      core.MoneyFromSAR(si.priceSAR),
				Cost:       core.MoneyFromSAR(si.costSAR),
				SortOrder:  int64(ii),
				Status:     core.StatusActive,
			})
			if err != nil {
				return fmt.Errorf("seed item %q: %w", si.nameEn, err)
			}
		}
	}

	slog.InfoContext(ctx, "Database seeded with starter menu",
		"categories", len(seed))
	return nil
}
