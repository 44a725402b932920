package validation

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/document"
	"github.com/edvalho/recipelint/pkg/otelhelper"
)

// Runner wires the contract prefetch phase in front of the pure validation
// pass. The prefetch fans out under bounded concurrency; the pass itself
// stays single-threaded so issue ordering is reproducible.
type Runner struct {
	source contracts.Source
	logger *slog.Logger
	tracer trace.Tracer
}

func NewRunner(source contracts.Source, logger *slog.Logger) *Runner {
	return &Runner{
		source: source,
		logger: logger.With("module", "validation_runner"),
	}
}

// WithTracer enables span reporting around the prefetch and the pass.
func (r *Runner) WithTracer(tracer trace.Tracer) *Runner {
	r.tracer = tracer

	return r
}

// Run validates one raw recipe document end to end.
func (r *Runner) Run(ctx context.Context, raw []byte) *Report {
	build := document.Build(raw)

	if build.Structural() {
		r.logger.Warn("Recipe document could not be built", "issues", len(build.Issues))

		return Validate(build, nil)
	}

	ctx, span := r.startSpan(ctx, "recipe.validate",
		attribute.String(otelhelper.RecipeNameKey, build.Recipe.Name))
	defer span.End()

	pairs := Pairs(build.Recipe)

	snapshot := contracts.NewPrefetcher(r.source, r.logger).Fetch(ctx, pairs)

	if err := ctx.Err(); err != nil {
		otelhelper.SetError(span, err,
			attribute.Int("recipelint.contracts.requested", len(pairs)))
		r.logger.Warn("Contract prefetch interrupted", "error", err)
	}

	r.logger.Debug("Contract prefetch finished",
		"requested", len(pairs), "fetched", len(snapshot))

	report := Validate(build, snapshot.Lookup)

	span.SetAttributes(
		attribute.String(otelhelper.RunIDKey, report.RunID),
		attribute.String(otelhelper.VerdictKey, string(report.Verdict)),
		attribute.Int(otelhelper.IssueCountKey, len(report.Issues)),
	)

	return report
}

func (r *Runner) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if r.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return otelhelper.StartSpan(ctx, r.tracer, name, attrs...)
}
