package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/internat/core/recap"
)

type recapRepository struct {
	recaps *recapTable
}

var _ recap.Repository = (*recapRepository)(nil) // interface compliance check

func NewRecapRepository(db *DB) recap.Repository {
	return &recapRepository{recaps: db.recaps}
}

func (repo *recapRepository) UpsertDailyRecap(_ context.Context, day time.Time, content string) (recap.DailyRecap, error) {
	repo.recaps.Lock()
	defer repo.recaps.Unlock()

	key := dayKey(day)
	if rec, ok := repo.recaps.table[key]; ok {
		// identity and creation timestamp survive regeneration
		rec.Content = content
		return *rec, nil
	}
	rec := recap.DailyRecap{
		ID:        uuid.New().String(),
		Day:       day,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	repo.recaps.table[key] = &rec
	return rec, nil
}

func (repo *recapRepository) GetDailyRecapByDay(_ context.Context, day time.Time) (recap.DailyRecap, error) {
	repo.recaps.RLock()
	defer repo.recaps.RUnlock()

	if rec, ok := repo.recaps.table[dayKey(day)]; ok {
		return *rec, nil
	}
	return recap.DailyRecap{}, recap.ErrNotFound
}

func (repo *recapRepository) QueryAllDailyRecaps(_ context.Context) ([]recap.DailyRecap, error) {
	repo.recaps.RLock()
	defer repo.recaps.RUnlock()

	recaps := make([]recap.DailyRecap, 0, len(repo.recaps.table))
	for _, rec := range repo.recaps.table {
		recaps = append(recaps, *rec)
	}
	sort.Slice(recaps, func(i, j int) bool { return recaps[i].Day.After(recaps[j].Day) })
	return recaps, nil
}
