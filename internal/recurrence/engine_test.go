package recurrence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoubayerBS/budgetbud-sub000/internal/calendar"
	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeStore holds templates in memory, keyed by user.
type fakeStore struct {
	mu        sync.Mutex
	templates map[uint][]*models.RecurringTemplate
	listErr   error
}

func newFakeStore(templates ...*models.RecurringTemplate) *fakeStore {
	s := &fakeStore{templates: make(map[uint][]*models.RecurringTemplate)}
	for _, tmpl := range templates {
		s.templates[tmpl.UserID] = append(s.templates[tmpl.UserID], tmpl)
	}
	return s
}

func (s *fakeStore) ListActive(_ context.Context, userID uint) ([]models.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.RecurringTemplate
	for _, tmpl := range s.templates[userID] {
		if tmpl.IsActive {
			out = append(out, *tmpl)
		}
	}
	return out, nil
}

func (s *fakeStore) AdvanceCursor(_ context.Context, templateID uint, occurrence time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, templates := range s.templates {
		for _, tmpl := range templates {
			if tmpl.ID == templateID {
				cursor := occurrence
				tmpl.LastProcessed = &cursor
			}
		}
	}
	return nil
}

func (s *fakeStore) ActiveUserIDs(_ context.Context) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for userID, templates := range s.templates {
		for _, tmpl := range templates {
			if tmpl.IsActive {
				ids = append(ids, userID)
				break
			}
		}
	}
	return ids, nil
}

// fakeSink records appended occurrences; it enforces the same uniqueness the
// database index provides.
type fakeSink struct {
	mu       sync.Mutex
	appended []appendedOccurrence
	seen     map[appendKey]bool
	failN    int // fail the first N appends with failErr
	failErr  error
}

type appendedOccurrence struct {
	TemplateID uint
	UserID     uint
	Date       time.Time
	Amount     int64
}

type appendKey struct {
	templateID uint
	date       time.Time
}

func newFakeSink() *fakeSink {
	return &fakeSink{seen: make(map[appendKey]bool)}
}

func (s *fakeSink) AppendOccurrence(_ context.Context, tmpl *models.RecurringTemplate, occurrence time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failN > 0 {
		s.failN--
		return s.failErr
	}
	key := appendKey{templateID: tmpl.ID, date: occurrence}
	if s.seen[key] {
		return apperrors.ErrOccurrenceExists
	}
	s.seen[key] = true
	s.appended = append(s.appended, appendedOccurrence{
		TemplateID: tmpl.ID,
		UserID:     tmpl.UserID,
		Date:       occurrence,
		Amount:     tmpl.Amount,
	})
	return nil
}

func (s *fakeSink) dates() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.appended))
	for i, a := range s.appended {
		out[i] = a.Date
	}
	return out
}

func monthlyTemplate(id, userID uint, start time.Time) *models.RecurringTemplate {
	return &models.RecurringTemplate{
		Base:      models.Base{ID: id},
		UserID:    userID,
		Type:      models.TransactionTypeExpense,
		Amount:    1500,
		Category:  "Subscriptions",
		Frequency: models.FrequencyMonthly,
		StartDate: start,
		IsActive:  true,
	}
}

func TestMaterialize_CatchUp(t *testing.T) {
	t.Run("monthly month-end sequence is gap free", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []time.Time{
			date(2024, 1, 31),
			date(2024, 2, 29),
			date(2024, 3, 31),
			date(2024, 4, 30),
		}
		got := sink.dates()
		if len(got) != len(want) {
			t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if !got[i].Equal(want[i]) {
				t.Errorf("occurrence %d: expected %v, got %v", i, want[i], got[i])
			}
		}
		if tmpl.LastProcessed == nil || !tmpl.LastProcessed.Equal(date(2024, 4, 30)) {
			t.Errorf("expected cursor at 2024-04-30, got %v", tmpl.LastProcessed)
		}
	})

	t.Run("start date today produces exactly one occurrence", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 3, 15))
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 3, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != 1 {
			t.Fatalf("expected 1 occurrence, got %d", len(sink.appended))
		}
	})

	t.Run("future start date produces nothing", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 6, 1))
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != 0 {
			t.Fatalf("expected no occurrences, got %d", len(sink.appended))
		}
		if tmpl.LastProcessed != nil {
			t.Errorf("cursor must not advance for future templates, got %v", tmpl.LastProcessed)
		}
	})

	t.Run("daily template caught up produces nothing", func(t *testing.T) {
		today := date(2024, 5, 15)
		tmpl := monthlyTemplate(1, 1, date(2024, 5, 1))
		tmpl.Frequency = models.FrequencyDaily
		tmpl.LastProcessed = &today
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(today))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != 0 {
			t.Fatalf("expected no occurrences, got %d", len(sink.appended))
		}
	})

	t.Run("second pass is idempotent", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := len(sink.appended)

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != first {
			t.Errorf("second pass appended %d extra occurrences", len(sink.appended)-first)
		}
	})

	t.Run("inactive templates are skipped", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
		tmpl.IsActive = false
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != 0 {
			t.Fatalf("expected no occurrences for inactive template, got %d", len(sink.appended))
		}
	})

	t.Run("weekly frequency steps by seven days", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 5, 1))
		tmpl.Frequency = models.FrequencyWeekly
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []time.Time{date(2024, 5, 1), date(2024, 5, 8), date(2024, 5, 15)}
		got := sink.dates()
		if len(got) != len(want) {
			t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if !got[i].Equal(want[i]) {
				t.Errorf("occurrence %d: expected %v, got %v", i, want[i], got[i])
			}
		}
	})

	t.Run("resumes after cursor without refilling", func(t *testing.T) {
		cursor := date(2024, 2, 29)
		tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
		tmpl.LastProcessed = &cursor
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 4, 30)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []time.Time{date(2024, 3, 31), date(2024, 4, 30)}
		got := sink.dates()
		if len(got) != len(want) {
			t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(got), got)
		}
		for i := range want {
			if !got[i].Equal(want[i]) {
				t.Errorf("occurrence %d: expected %v, got %v", i, want[i], got[i])
			}
		}
	})
}

func TestMaterialize_FailureIsolation(t *testing.T) {
	t.Run("invalid template does not block others", func(t *testing.T) {
		bad := monthlyTemplate(1, 1, date(2024, 5, 1))
		bad.Frequency = models.Frequency("fortnightly")
		good := monthlyTemplate(2, 1, date(2024, 5, 1))
		store := newFakeStore(bad, good)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != 1 {
			t.Fatalf("expected 1 occurrence from the valid template, got %d", len(sink.appended))
		}
		if sink.appended[0].TemplateID != 2 {
			t.Errorf("expected occurrence from template 2, got %d", sink.appended[0].TemplateID)
		}
	})

	t.Run("zero start date is treated as invalid", func(t *testing.T) {
		bad := monthlyTemplate(1, 1, time.Time{})
		good := monthlyTemplate(2, 1, date(2024, 5, 1))
		store := newFakeStore(bad, good)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != 1 || sink.appended[0].TemplateID != 2 {
			t.Fatalf("expected only the valid template to materialize, got %+v", sink.appended)
		}
	})

	t.Run("sink failure aborts the pass", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		sink.failN = 1
		sink.failErr = errors.New("connection reset")
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		err := engine.Materialize(context.Background(), 1)
		if !errors.Is(err, apperrors.ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
		if tmpl.LastProcessed != nil {
			t.Errorf("cursor must not advance past a failed insert, got %v", tmpl.LastProcessed)
		}
	})

	t.Run("pass resumes cleanly after transient failure", func(t *testing.T) {
		tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
		store := newFakeStore(tmpl)
		sink := newFakeSink()
		sink.failN = 2
		sink.failErr = errors.New("connection reset")
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 1); err == nil {
			t.Fatal("expected first pass to fail")
		}
		if err := engine.Materialize(context.Background(), 1); err == nil {
			t.Fatal("expected second pass to fail")
		}
		if err := engine.Materialize(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error on recovered pass: %v", err)
		}
		if len(sink.appended) != 4 {
			t.Fatalf("expected 4 occurrences after recovery, got %d", len(sink.appended))
		}
	})

	t.Run("store failure surfaces as unavailable", func(t *testing.T) {
		store := newFakeStore()
		store.listErr = errors.New("connection refused")
		engine := NewEngine(store, newFakeSink(), fixedNow(date(2024, 5, 15)))

		err := engine.Materialize(context.Background(), 1)
		if !errors.Is(err, apperrors.ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}

func TestMaterialize_DuplicateOccurrence(t *testing.T) {
	// An earlier crashed pass inserted Feb's occurrence but never advanced
	// the cursor. The engine must treat the duplicate as benign and still
	// move past it.
	tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
	cursor := date(2024, 1, 31)
	tmpl.LastProcessed = &cursor
	store := newFakeStore(tmpl)
	sink := newFakeSink()
	sink.seen[appendKey{templateID: 1, date: date(2024, 2, 29)}] = true
	engine := NewEngine(store, sink, fixedNow(date(2024, 3, 31)))

	if err := engine.Materialize(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := sink.dates()
	if len(got) != 1 || !got[0].Equal(date(2024, 3, 31)) {
		t.Fatalf("expected only 2024-03-31 to be appended, got %v", got)
	}
	if tmpl.LastProcessed == nil || !tmpl.LastProcessed.Equal(date(2024, 3, 31)) {
		t.Errorf("expected cursor at 2024-03-31, got %v", tmpl.LastProcessed)
	}
}

func TestMaterialize_ConcurrentCalls(t *testing.T) {
	tmpl := monthlyTemplate(1, 1, date(2024, 1, 31))
	store := newFakeStore(tmpl)
	sink := newFakeSink()
	engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := engine.Materialize(context.Background(), 1); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(sink.appended) != 4 {
		t.Fatalf("expected exactly 4 occurrences across concurrent calls, got %d", len(sink.appended))
	}
}

func TestMaterializeAll(t *testing.T) {
	t.Run("covers every user with active templates", func(t *testing.T) {
		alice := monthlyTemplate(1, 1, date(2024, 4, 1))
		bob := monthlyTemplate(2, 2, date(2024, 4, 1))
		store := newFakeStore(alice, bob)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.MaterializeAll(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		byUser := make(map[uint]int)
		for _, a := range sink.appended {
			byUser[a.UserID]++
		}
		if byUser[1] != 2 || byUser[2] != 2 {
			t.Errorf("expected 2 occurrences per user, got %v", byUser)
		}
	})

	t.Run("users never see each other's templates", func(t *testing.T) {
		alice := monthlyTemplate(1, 1, date(2024, 5, 1))
		store := newFakeStore(alice)
		sink := newFakeSink()
		engine := NewEngine(store, sink, fixedNow(date(2024, 5, 15)))

		if err := engine.Materialize(context.Background(), 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sink.appended) != 0 {
			t.Fatalf("user 2 must not materialize user 1's templates, got %d occurrences", len(sink.appended))
		}
	})
}

func TestNthOccurrence(t *testing.T) {
	t.Run("monthly occurrences are anchored to the start date", func(t *testing.T) {
		start := date(2024, 1, 31)
		want := []time.Time{
			date(2024, 1, 31),
			date(2024, 2, 29),
			date(2024, 3, 31),
			date(2024, 4, 30),
			date(2024, 5, 31),
		}
		for n, expected := range want {
			got, err := NthOccurrence(start, models.FrequencyMonthly, n)
			if err != nil {
				t.Fatalf("unexpected error at n=%d: %v", n, err)
			}
			if !got.Equal(expected) {
				t.Errorf("n=%d: expected %v, got %v", n, expected, got)
			}
		}
	})

	t.Run("unrecognized frequency is invalid", func(t *testing.T) {
		_, err := NthOccurrence(date(2024, 1, 1), models.Frequency("hourly"), 1)
		if !errors.Is(err, apperrors.ErrInvalidTemplate) {
			t.Fatalf("expected ErrInvalidTemplate, got %v", err)
		}
	})

	t.Run("start with time of day is normalized", func(t *testing.T) {
		start := time.Date(2024, 1, 31, 15, 30, 0, 0, time.UTC)
		got, err := NthOccurrence(start, models.FrequencyMonthly, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(calendar.DateOnly(start)) {
			t.Errorf("expected normalized date, got %v", got)
		}
	})
}
