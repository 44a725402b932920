package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/eventbus"
	"github.com/edvalho/recipelint/pkg/events"
	"github.com/edvalho/recipelint/pkg/models"
	"github.com/edvalho/recipelint/pkg/testutil"
	"github.com/edvalho/recipelint/pkg/validation"
)

// capturingBus records published events for assertions.
type capturingBus struct {
	mu        sync.Mutex
	published []eventbus.Event
}

func (b *capturingBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = append(b.published, event)

	return nil
}

func (b *capturingBus) Handle(_ events.EventType, _ eventbus.EventHandler) error { return nil }

func (b *capturingBus) Subscribe(_ context.Context) error { return nil }

func (b *capturingBus) Close() error { return nil }

func (b *capturingBus) GenerateID() string { return uuid.New().String() }

func (b *capturingBus) events() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]eventbus.Event(nil), b.published...)
}

func writeRecipe(t *testing.T, dir, name string, recipe *models.Recipe) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), testutil.MarshalRecipe(recipe), 0o644))
}

func TestWatcher_Sweep(t *testing.T) {
	dir := t.TempDir()

	writeRecipe(t, dir, "passing.json", testutil.CreateTestRecipe("Passing recipe",
		testutil.CreateTestTrigger(testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2"),
		))))

	writeRecipe(t, dir, "failing.json", testutil.CreateTestRecipe("Failing recipe",
		testutil.CreateTestTrigger(testutil.WithChildren(
			testutil.CreateTestBlock(1, "a2", testutil.WithInput(map[string]any{
				"note": "data.salesforce.a9.id",
			})),
		))))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a recipe"), 0o644))

	bus := &capturingBus{}
	watcher := NewWatcher(
		slog.Default(),
		validation.NewRunner(contracts.Static{}, slog.Default()),
		bus,
		dir,
		"@every 1m",
	)

	watcher.sweep(context.Background())

	published := bus.events()
	require.Len(t, published, 2, "one event per recipe document, non-JSON files skipped")

	types := map[events.EventType]int{}
	for _, event := range published {
		types[event.GetType()]++
	}

	assert.Equal(t, 1, types[events.RecipeValidatedEvent])
	assert.Equal(t, 1, types[events.RecipeValidationFailedEvent])
}

func TestWatcher_RejectsBadSchedule(t *testing.T) {
	watcher := NewWatcher(
		slog.Default(),
		validation.NewRunner(contracts.Static{}, slog.Default()),
		&capturingBus{},
		t.TempDir(),
		"not a cron expression",
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, watcher.Start(ctx))
}

func TestPublishReport(t *testing.T) {
	bus := &capturingBus{}

	report := &validation.Report{
		RunID:      "run-9",
		RecipeName: "Sample",
		Verdict:    validation.VerdictFail,
		Errors:     2,
		Warnings:   1,
	}

	require.NoError(t, publishReport(context.Background(), bus, "/tmp/sample.json", report, time.Second))

	published := bus.events()
	require.Len(t, published, 1)

	failed, ok := published[0].(events.RecipeValidationFailed)
	require.True(t, ok)
	assert.Equal(t, "run-9", failed.RunID)
	assert.Equal(t, 2, failed.Errors)
	assert.Equal(t, "/tmp/sample.json", failed.RecipePath)
	assert.Equal(t, events.RecipeValidationFailedEvent, failed.Type)
}
