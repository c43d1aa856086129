package services

import (
	"context"
	"testing"
	"time"

	"github.com/zoubayerBS/budgetbud-sub000/internal/models"
	"github.com/zoubayerBS/budgetbud-sub000/internal/pagination"
	"github.com/zoubayerBS/budgetbud-sub000/internal/testutil"
)

func TestCreateTemplate(t *testing.T) {
	t.Run("creates active template with normalized start date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2024, 1, 31, 15, 30, 0, 0, time.UTC)
		tmpl, err := svc.CreateTemplate(user.ID, models.TransactionTypeExpense, 1500, "Subscriptions", "Streaming", models.FrequencyMonthly, start)
		testutil.AssertNoError(t, err)

		if !tmpl.IsActive {
			t.Error("expected new template to be active")
		}
		if tmpl.LastProcessed != nil {
			t.Error("new template must have no cursor")
		}
		if !tmpl.StartDate.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected start date normalized to midnight UTC, got %v", tmpl.StartDate)
		}
	})

	t.Run("rejects invalid frequency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		_, err := svc.CreateTemplate(1, models.TransactionTypeExpense, 1500, "Subscriptions", "", models.Frequency("fortnightly"), time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		_, err := svc.CreateTemplate(1, models.TransactionTypeExpense, 0, "Subscriptions", "", models.FrequencyMonthly, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects zero start date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		_, err := svc.CreateTemplate(1, models.TransactionTypeExpense, 1500, "Subscriptions", "", models.FrequencyMonthly, time.Time{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)

		_, err := svc.CreateTemplate(1, models.TransactionType("transfer"), 1500, "Subscriptions", "", models.FrequencyMonthly, time.Now())
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})
}

func TestGetUserTemplates(t *testing.T) {
	t.Run("excludes deactivated templates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)

		active := testutil.CreateTestTemplate(t, db, user.ID, models.FrequencyMonthly, time.Now())
		inactive := testutil.CreateTestTemplate(t, db, user.ID, models.FrequencyMonthly, time.Now())
		testutil.AssertNoError(t, svc.DeactivateTemplate(user.ID, inactive.ID))

		result, err := svc.GetUserTemplates(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 template, got %d", result.TotalItems)
		}
		if result.Data[0].ID != active.ID {
			t.Errorf("expected template %d, got %d", active.ID, result.Data[0].ID)
		}
	})
}

func TestDeactivateTemplate(t *testing.T) {
	t.Run("keeps the row for provenance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)
		tmpl := testutil.CreateTestTemplate(t, db, user.ID, models.FrequencyMonthly, time.Now())

		testutil.AssertNoError(t, svc.DeactivateTemplate(user.ID, tmpl.ID))

		var stored models.RecurringTemplate
		if err := db.First(&stored, tmpl.ID).Error; err != nil {
			t.Fatalf("expected template row to survive deactivation: %v", err)
		}
		if stored.IsActive {
			t.Error("expected template to be inactive")
		}
	})

	t.Run("wrong user gets not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		tmpl := testutil.CreateTestTemplate(t, db, user1.ID, models.FrequencyMonthly, time.Now())

		err := svc.DeactivateTemplate(user2.ID, tmpl.ID)
		testutil.AssertAppError(t, err, "TEMPLATE_NOT_FOUND")
	})
}

func TestTemplateStore(t *testing.T) {
	t.Run("ListActive returns only the user's active templates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		mine := testutil.CreateTestTemplate(t, db, user1.ID, models.FrequencyMonthly, time.Now())
		testutil.CreateTestTemplate(t, db, user2.ID, models.FrequencyMonthly, time.Now())
		inactive := testutil.CreateTestTemplate(t, db, user1.ID, models.FrequencyMonthly, time.Now())
		testutil.AssertNoError(t, svc.DeactivateTemplate(user1.ID, inactive.ID))

		templates, err := svc.ListActive(context.Background(), user1.ID)
		testutil.AssertNoError(t, err)

		if len(templates) != 1 || templates[0].ID != mine.ID {
			t.Fatalf("expected only template %d, got %+v", mine.ID, templates)
		}
	})

	t.Run("AdvanceCursor persists last processed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)
		tmpl := testutil.CreateTestTemplate(t, db, user.ID, models.FrequencyMonthly, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

		occurrence := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		testutil.AssertNoError(t, svc.AdvanceCursor(context.Background(), tmpl.ID, occurrence))

		var stored models.RecurringTemplate
		if err := db.First(&stored, tmpl.ID).Error; err != nil {
			t.Fatalf("failed to reload template: %v", err)
		}
		if stored.LastProcessed == nil || !stored.LastProcessed.Equal(occurrence) {
			t.Errorf("expected cursor %v, got %v", occurrence, stored.LastProcessed)
		}
	})

	t.Run("ActiveUserIDs deduplicates users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestTemplate(t, db, user1.ID, models.FrequencyMonthly, time.Now())
		testutil.CreateTestTemplate(t, db, user1.ID, models.FrequencyWeekly, time.Now())
		inactive := testutil.CreateTestTemplate(t, db, user2.ID, models.FrequencyMonthly, time.Now())
		testutil.AssertNoError(t, svc.DeactivateTemplate(user2.ID, inactive.ID))

		ids, err := svc.ActiveUserIDs(context.Background())
		testutil.AssertNoError(t, err)

		if len(ids) != 1 || ids[0] != user1.ID {
			t.Fatalf("expected only user %d, got %v", user1.ID, ids)
		}
	})
}
