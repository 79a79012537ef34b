package recap_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/trezcool/internat/core/attendance"
	"github.com/trezcool/internat/core/recap"
	"github.com/trezcool/internat/core/roster"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(context.Context, string) (string, error) {
	p.calls++
	return p.text, p.err
}

func testDayData() recap.DayData {
	return recap.DayData{
		Day: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Groups: []recap.GroupReport{
			{
				Group:       attendance.Group{GradeLevel: roster.GradeSixieme, Cohort: roster.CohortGirls},
				Observation: "lights out on time",
			},
			{
				Group:       attendance.Group{GradeLevel: roster.GradeSixieme, Cohort: roster.CohortBoys},
				Observation: recap.PlaceholderObservation,
				Absences:    []string{"Dupont, Lucas"},
			},
		},
	}
}

func TestGenerator_Generate_firstProviderWins(t *testing.T) {
	p1 := &stubProvider{name: "first", text: "a fine recap"}
	p2 := &stubProvider{name: "second", text: "never used"}
	gen := recap.NewGenerator(nopLogger{}, time.Second, p1, p2)

	got := gen.Generate(context.Background(), testDayData())
	assert.Equal(t, "a fine recap", got)
	assert.Equal(t, 1, p1.calls)
	assert.Zero(t, p2.calls)
}

func TestGenerator_Generate_fallsThroughOnFailure(t *testing.T) {
	p1 := &stubProvider{name: "first", err: errors.New("rate limited")}
	p2 := &stubProvider{name: "second", text: ""} // empty counts as failure
	p3 := &stubProvider{name: "third", text: "rescued recap"}
	gen := recap.NewGenerator(nopLogger{}, time.Second, p1, p2, p3)

	got := gen.Generate(context.Background(), testDayData())
	assert.Equal(t, "rescued recap", got)
	assert.Equal(t, 1, p1.calls)
	assert.Equal(t, 1, p2.calls)
	assert.Equal(t, 1, p3.calls)
}

// With every provider down, generation still yields a complete report.
func TestGenerator_Generate_deterministicFallback(t *testing.T) {
	p1 := &stubProvider{name: "first", err: errors.New("down")}
	p2 := &stubProvider{name: "second", err: errors.New("down too")}
	gen := recap.NewGenerator(nopLogger{}, time.Second, p1, p2)

	got := gen.Generate(context.Background(), testDayData())
	assert.Equal(t, recap.RenderFallback(testDayData()), got)
}

// hungProvider blocks until its context is cancelled, like a stalled external
// service.
type hungProvider struct {
	calls int
}

func (p *hungProvider) Name() string { return "hung" }

func (p *hungProvider) Generate(ctx context.Context, _ string) (string, error) {
	p.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

// A hung provider cannot stall the pipeline: the per-call timeout cancels it
// and the chain falls through to the next strategy.
func TestGenerator_Generate_hungProviderTimesOut(t *testing.T) {
	hung := &hungProvider{}
	next := &stubProvider{name: "next", text: "rescued recap"}
	gen := recap.NewGenerator(nopLogger{}, 10*time.Millisecond, hung, next)

	done := make(chan string, 1)
	go func() {
		done <- gen.Generate(context.Background(), testDayData())
	}()

	select {
	case got := <-done:
		assert.Equal(t, "rescued recap", got)
		assert.Equal(t, 1, hung.calls)
		assert.Equal(t, 1, next.calls)
	case <-time.After(5 * time.Second):
		t.Fatal("Generate() still blocked; per-provider timeout did not fire")
	}
}

func TestGenerator_Generate_noProviders(t *testing.T) {
	gen := recap.NewGenerator(nopLogger{}, time.Second)
	got := gen.Generate(context.Background(), testDayData())
	assert.Equal(t, recap.RenderFallback(testDayData()), got)
}

func TestRenderFallback(t *testing.T) {
	got := recap.RenderFallback(testDayData())

	assert.Contains(t, got, "Nightly recap - Friday, 15 March 2024")
	assert.Contains(t, got, "2 group(s) took roll call, 1 absence(s).")
	assert.Contains(t, got, "6eme girls")
	assert.Contains(t, got, "lights out on time")
	assert.Contains(t, got, "6eme boys")
	assert.Contains(t, got, recap.PlaceholderObservation)
	assert.Contains(t, got, "Absent (1):")
	assert.Contains(t, got, "- Dupont, Lucas")

	// groups rendered in the order given
	assert.Less(t, strings.Index(got, "6eme girls"), strings.Index(got, "6eme boys"))
}

func TestBuildPrompt(t *testing.T) {
	got := recap.BuildPrompt(testDayData())

	assert.Contains(t, got, "Friday, 15 March 2024")
	assert.Contains(t, got, "2 group(s) took roll call; 1 absence(s) in total.")
	assert.Contains(t, got, "## 6eme girls")
	assert.Contains(t, got, "Observation: lights out on time")
	assert.Contains(t, got, "## 6eme boys")
	assert.Contains(t, got, "Absent (1): Dupont, Lucas")
	assert.Contains(t, got, "300 words maximum")
}
