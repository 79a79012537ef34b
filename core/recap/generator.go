package recap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/internat/core"
)

// SystemPrompt frames the text-generation providers.
const SystemPrompt = "You are a boarding school supervision assistant. " +
	"You write clear, concise and structured nightly recaps for supervisory staff."

// TextProvider is an external text-generation service.
type TextProvider interface {
	Name() string
	// Generate completes the given prompt. Any failure (timeout, auth,
	// malformed response) is returned as an error and never panics.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator turns aggregated day data into prose. Providers are tried in the
// order given; whenever all of them fail, the deterministic fallback renders
// the report, so Generate always returns text for non-empty input.
type Generator struct {
	providers []TextProvider
	timeout   time.Duration
	log       core.Logger
}

func NewGenerator(log core.Logger, timeout time.Duration, providers ...TextProvider) *Generator {
	return &Generator{providers: providers, timeout: timeout, log: log}
}

func (gen *Generator) Generate(ctx context.Context, data DayData) string {
	prompt := BuildPrompt(data)

	for _, provider := range gen.providers {
		text, err := gen.tryProvider(ctx, provider, prompt)
		if err != nil {
			gen.log.Warn("text provider failed; falling through", map[string]interface{}{
				"provider": provider.Name(), "error": err.Error(),
			})
			continue
		}
		if text != "" {
			gen.log.Info("recap generated", map[string]interface{}{"provider": provider.Name()})
			return text
		}
		gen.log.Warn("text provider returned empty text; falling through", map[string]interface{}{
			"provider": provider.Name(),
		})
	}
	return RenderFallback(data)
}

// tryProvider bounds each provider call so a hung external service cannot
// stall the pipeline.
func (gen *Generator) tryProvider(ctx context.Context, provider TextProvider, prompt string) (string, error) {
	if gen.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gen.timeout)
		defer cancel()
	}
	text, err := provider.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return core.CleanString(text), nil
}

// BuildPrompt describes every group's observation and absences for the
// text-generation providers, groups in canonical order.
func BuildPrompt(data DayData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write the nightly recap of %s for a boarding school.\n", formatDay(data.Day))
	fmt.Fprintf(&b, "%d group(s) took roll call; %d absence(s) in total.\n", len(data.Groups), data.TotalAbsences())
	b.WriteString("Observations per group:\n")

	for _, report := range data.Groups {
		fmt.Fprintf(&b, "\n## %s %s\n", report.Group.GradeLevel, report.Group.Cohort.Label())
		fmt.Fprintf(&b, "Observation: %s\n", report.Observation)
		if len(report.Absences) > 0 {
			fmt.Fprintf(&b, "Absent (%d): %s\n", len(report.Absences), strings.Join(report.Absences, "; "))
		}
	}

	b.WriteString(`
Write a recap that:
1. starts with a one or two sentence overall summary
2. then goes group by group, in the order given above
3. highlights situations needing special attention
Stay factual, professional and concise. 300 words maximum.`)
	return b.String()
}

// RenderFallback deterministically formats the report without any external
// service. It is a total function over the aggregated data: it cannot fail and
// always yields a line for every active group.
func RenderFallback(data DayData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Nightly recap - %s\n", formatDay(data.Day))
	fmt.Fprintf(&b, "%d group(s) took roll call, %d absence(s).\n", len(data.Groups), data.TotalAbsences())

	for _, report := range data.Groups {
		fmt.Fprintf(&b, "\n%s %s\n", report.Group.GradeLevel, report.Group.Cohort.Label())
		fmt.Fprintf(&b, "  %s\n", report.Observation)
		if len(report.Absences) > 0 {
			fmt.Fprintf(&b, "  Absent (%d):\n", len(report.Absences))
			for _, name := range report.Absences {
				fmt.Fprintf(&b, "    - %s\n", name)
			}
		}
	}
	return b.String()
}

func formatDay(day time.Time) string {
	return day.Format("Monday, 2 January 2006")
}
