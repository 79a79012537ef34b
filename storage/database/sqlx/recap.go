package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/internat/core/recap"
)

type recapRepository struct {
	db *sqlx.DB
}

var _ recap.Repository = (*recapRepository)(nil) // interface compliance check

func NewRecapRepository(db *sqlx.DB) *recapRepository {
	return &recapRepository{db: db}
}

type recapRow struct {
	ID        string    `db:"id"`
	Day       time.Time `db:"day"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (row recapRow) toRecap() recap.DailyRecap {
	return recap.DailyRecap{
		ID:        row.ID,
		Day:       row.Day.UTC(),
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
	}
}

// UpsertDailyRecap keeps id and created_at out of the conflict update so the
// row's identity and first-generation timestamp survive regeneration.
func (repo recapRepository) UpsertDailyRecap(ctx context.Context, day time.Time, content string) (recap.DailyRecap, error) {
	var row recapRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO daily_recap (id, day, content, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day) DO UPDATE SET content = EXCLUDED.content
		RETURNING id, day, content, created_at`,
		uuid.New().String(), day, content, time.Now().UTC(),
	)
	if err != nil {
		return recap.DailyRecap{}, errors.Wrap(err, "upserting daily recap")
	}
	return row.toRecap(), nil
}

func (repo recapRepository) GetDailyRecapByDay(ctx context.Context, day time.Time) (recap.DailyRecap, error) {
	var row recapRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM daily_recap WHERE day = $1`, day)
	if err != nil {
		if err == sql.ErrNoRows {
			return recap.DailyRecap{}, recap.ErrNotFound
		}
		return recap.DailyRecap{}, errors.Wrap(err, "finding daily recap")
	}
	return row.toRecap(), nil
}

func (repo recapRepository) QueryAllDailyRecaps(ctx context.Context) ([]recap.DailyRecap, error) {
	var rows []recapRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM daily_recap ORDER BY day DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying daily recaps")
	}
	recaps := make([]recap.DailyRecap, 0, len(rows))
	for _, row := range rows {
		recaps = append(recaps, row.toRecap())
	}
	return recaps, nil
}
