// Package recurrence implements the materialization engine for recurring
// transactions: given a user's recurring templates, it catches up every
// occurrence due between each template's cursor and "today", inserting one
// transaction per occurrence and advancing the cursor after each insert.
//
// The engine is a pure function of its collaborators: a template store, a
// transaction sink, and a clock. It knows nothing about HTTP or the
// database, so the same engine instance serves both the synchronous
// read-path trigger and the scheduled sweep worker.
package recurrence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zoubayerBS/budgetbud-sub000/internal/calendar"
	apperrors "github.com/zoubayerBS/budgetbud-sub000/internal/errors"
	"github.com/zoubayerBS/budgetbud-sub000/internal/logger"
	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
)

// TemplateStore is the engine's view of recurring template persistence.
type TemplateStore interface {
	// ListActive returns the active recurring templates for a user.
	ListActive(ctx context.Context, userID uint) ([]models.RecurringTemplate, error)
	// AdvanceCursor persists a template's last-processed date. Called once
	// per materialized occurrence, immediately after the insert.
	AdvanceCursor(ctx context.Context, templateID uint, occurrence time.Time) error
	// ActiveUserIDs returns the IDs of all users with at least one active
	// template. Used by the sweep worker.
	ActiveUserIDs(ctx context.Context) ([]uint, error)
}

// TransactionSink is the engine's view of transaction persistence.
type TransactionSink interface {
	// AppendOccurrence inserts the transaction for one template occurrence.
	// It must return ErrOccurrenceExists when a transaction for
	// (template, occurrence) already exists, so racing passes converge
	// instead of double-inserting.
	AppendOccurrence(ctx context.Context, tmpl *models.RecurringTemplate, occurrence time.Time) error
}

// Materializer is the entry point the request layer depends on.
type Materializer interface {
	Materialize(ctx context.Context, userID uint) error
}

// Engine materializes due occurrences of recurring templates.
type Engine struct {
	templates TemplateStore
	sink      TransactionSink
	now       func() time.Time

	// Serializes concurrent Materialize calls per user so two simultaneous
	// reads cannot both observe the same pre-advance cursor.
	group singleflight.Group
}

// NewEngine creates a materialization engine. If now is nil, time.Now is used.
func NewEngine(templates TemplateStore, sink TransactionSink, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{templates: templates, sink: sink, now: now}
}

// Materialize catches up all active templates for a user. Calls for the same
// user are collapsed into a single pass; the duplicate caller shares the
// result. Safe to call on every transaction-list read.
func (e *Engine) Materialize(ctx context.Context, userID uint) error {
	_, err, _ := e.group.Do(strconv.FormatUint(uint64(userID), 10), func() (interface{}, error) {
		return nil, e.materializeUser(ctx, userID)
	})
	return err
}

// MaterializeAll runs one pass for every user with active templates.
// Per-user failures are logged and do not stop the remaining users.
func (e *Engine) MaterializeAll(ctx context.Context) error {
	userIDs, err := e.templates.ActiveUserIDs(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	for _, userID := range userIDs {
		if err := e.Materialize(ctx, userID); err != nil {
			logger.Get().Errorw("materialization pass failed",
				"user_id", userID,
				"error", err,
			)
		}
	}
	return nil
}

func (e *Engine) materializeUser(ctx context.Context, userID uint) error {
	today := calendar.DateOnly(e.now())

	templates, err := e.templates.ListActive(ctx, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	for i := range templates {
		if err := e.catchUp(ctx, &templates[i], today); err != nil {
			if errors.Is(err, apperrors.ErrInvalidTemplate) {
				// A malformed template is skipped; the rest of the
				// batch still gets processed.
				logger.Get().Warnw("skipping invalid recurring template",
					"template_id", templates[i].ID,
					"user_id", userID,
					"frequency", templates[i].Frequency,
					"error", err,
				)
				continue
			}
			// Store failures abort the pass. Templates already caught up
			// keep their advanced cursors; the next invocation resumes.
			return err
		}
	}
	return nil
}

// catchUp materializes every occurrence of tmpl due on or before today.
func (e *Engine) catchUp(ctx context.Context, tmpl *models.RecurringTemplate, today time.Time) error {
	next, n, err := firstCandidate(tmpl)
	if err != nil {
		return err
	}

	for calendar.OnOrBefore(next, today) {
		err := e.sink.AppendOccurrence(ctx, tmpl, next)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrOccurrenceExists):
			// A concurrent pass or an earlier crashed pass already
			// inserted this occurrence. The cursor still has to advance
			// past it or it would be retried forever.
		default:
			return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
		}

		// Checkpoint immediately, not batched: the cursor is the
		// idempotence guarantee for the next pass.
		if err := e.templates.AdvanceCursor(ctx, tmpl.ID, next); err != nil {
			return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
		}
		cursor := next
		tmpl.LastProcessed = &cursor

		n++
		next, err = NthOccurrence(tmpl.StartDate, tmpl.Frequency, n)
		if err != nil {
			return err
		}
	}
	return nil
}

// firstCandidate returns the first occurrence date not yet materialized along
// with its index in the occurrence sequence. With no cursor the start date
// itself is due immediately; otherwise the candidate is the earliest on-cycle
// date after the cursor.
func firstCandidate(tmpl *models.RecurringTemplate) (time.Time, int, error) {
	if tmpl.StartDate.IsZero() {
		return time.Time{}, 0, apperrors.WithMessage(apperrors.ErrInvalidTemplate, "recurring template has no start date")
	}

	next, err := NthOccurrence(tmpl.StartDate, tmpl.Frequency, 0)
	if err != nil {
		return time.Time{}, 0, err
	}
	if tmpl.LastProcessed == nil {
		return next, 0, nil
	}

	cursor := calendar.DateOnly(*tmpl.LastProcessed)
	n := 0
	for calendar.OnOrBefore(next, cursor) {
		n++
		if next, err = NthOccurrence(tmpl.StartDate, tmpl.Frequency, n); err != nil {
			return time.Time{}, 0, err
		}
	}
	return next, n, nil
}

// NthOccurrence returns occurrence n (0-based) of a template anchored at
// start. Occurrences are always computed from the anchor, not by stepping the
// previous occurrence: a monthly template starting Jan 31 lands on Feb 28/29,
// Mar 31, Apr 30, keeping the day-of-month whenever the target month has it.
func NthOccurrence(start time.Time, freq models.Frequency, n int) (time.Time, error) {
	start = calendar.DateOnly(start)
	switch freq {
	case models.FrequencyDaily:
		return calendar.AddDays(start, n), nil
	case models.FrequencyWeekly:
		return calendar.AddWeeks(start, n), nil
	case models.FrequencyMonthly:
		return calendar.AddMonths(start, n), nil
	case models.FrequencyYearly:
		return calendar.AddYears(start, n), nil
	default:
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidTemplate, "unrecognized frequency: "+string(freq))
	}
}
