package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/internat/core/recap"
)

// generateRecap builds and stores the recap of the given day, yesterday when
// empty. This is the entry point the nightly cron invokes.
func (cli *commandLine) generateRecap(day string) error {
	ctx := context.Background()

	var rec recap.DailyRecap
	var err error
	if day == "" {
		rec, err = cli.recapSvc.GenerateForYesterday(ctx)
	} else {
		var d time.Time
		if d, err = time.Parse("2006-01-02", day); err != nil {
			return fmt.Errorf("invalid day %q, expected YYYY-MM-DD", day)
		}
		rec, err = cli.recapSvc.Generate(ctx, d)
	}
	if err != nil {
		return err
	}

	fmt.Printf("recap generated for %s:\n\n%s\n", rec.Day.Format("2006-01-02"), rec.Content)
	return nil
}
