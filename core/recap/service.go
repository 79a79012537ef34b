package recap

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/internat/core"
)

var (
	// errors
	ErrNotFound = errors.New("recap not found")
	ErrNoData   = errors.New("no attendance data for this day")
)

type (
	Repository interface {
		// UpsertDailyRecap creates the day's recap or overwrites its content in
		// place. The row's ID and CreatedAt survive regeneration.
		UpsertDailyRecap(ctx context.Context, day time.Time, content string) (DailyRecap, error)
		GetDailyRecapByDay(ctx context.Context, day time.Time) (DailyRecap, error)
		// QueryAllDailyRecaps returns every recap, most recent day first.
		QueryAllDailyRecaps(ctx context.Context) ([]DailyRecap, error)
	}

	Service struct {
		repo    Repository
		agg     *Aggregator
		gen     *Generator
		mailSvc core.EmailService
		log     core.Logger
	}
)

func NewService(repo Repository, agg *Aggregator, gen *Generator, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{repo: repo, agg: agg, gen: gen, mailSvc: mailSvc, log: log}
}

// Generate aggregates the day's attendance, produces the report text and
// stores it, overwriting any previous recap of that day. Returns ErrNoData
// when no group took roll call. Generation itself cannot fail: provider
// failures fall through to the deterministic template.
func (svc *Service) Generate(ctx context.Context, day time.Time) (DailyRecap, error) {
	day = core.NormalizeDay(day)

	data, err := svc.agg.CollectDayData(ctx, day)
	if err != nil {
		return DailyRecap{}, err
	}
	if data.IsEmpty() {
		return DailyRecap{}, ErrNoData
	}

	content := svc.gen.Generate(ctx, data)

	rec, err := svc.repo.UpsertDailyRecap(ctx, day, content)
	if err != nil {
		return DailyRecap{}, err
	}
	svc.emailRecap(rec)
	return rec, nil
}

// GenerateForYesterday covers the scheduler contract: the nightly cron fires
// in the morning and recaps the night before.
func (svc *Service) GenerateForYesterday(ctx context.Context) (DailyRecap, error) {
	return svc.Generate(ctx, core.Yesterday())
}

func (svc *Service) GetByDay(ctx context.Context, day time.Time) (DailyRecap, error) {
	return svc.repo.GetDailyRecapByDay(ctx, core.NormalizeDay(day))
}

func (svc *Service) List(ctx context.Context) ([]DailyRecap, error) {
	return svc.repo.QueryAllDailyRecaps(ctx)
}

// emailRecap mails the stored recap to the configured supervisory staff.
// Delivery is best effort and never fails the generation.
func (svc *Service) emailRecap(rec DailyRecap) {
	if svc.mailSvc == nil {
		return
	}
	recipients := core.Conf.GetStringSlice("recapRecipients")
	if len(recipients) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(recipients))
	for _, addr := range recipients {
		to = append(to, mail.Address{Address: addr})
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Nightly recap - %s", rec.Day.Format("2006-01-02")),
		Body:    rec.Content,
	})
}
