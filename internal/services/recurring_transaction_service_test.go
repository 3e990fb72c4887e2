package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pennywise/internal/calendar"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func newTestRecurringService(t *testing.T, now time.Time) (RecurringTransactionServicer, *calendar.MockClock) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := &calendar.MockClock{FixedNow: now}
	return NewRecurringTransactionService(db, clock, time.UTC), clock
}

func ptr[T any](v T) *T { return &v }

func TestCreateRecurringTransaction(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		rt, err := svc.CreateRecurringTransaction(user.ID, RecurringTransactionInput{
			CategoryID:        &cat.ID,
			Amount:            ptr(testutil.Amount(t, "1200.005")),
			Frequency:         ptr(models.FrequencyMonthly),
			NextExecutionDate: ptr(testutil.Date(2025, time.April, 1)),
			Description:       ptr("Rent"),
		})
		testutil.AssertNoError(t, err)

		if !rt.IsActive {
			t.Error("expected new recurring transaction to be active")
		}
		testutil.AssertAmount(t, rt.Amount, "1200.01")
		testutil.AssertDate(t, rt.NextExecutionDate, testutil.Date(2025, time.April, 1))
		if rt.LastExecutionDate != nil {
			t.Error("expected no last execution date")
		}
		if rt.DescriptionText() != "Rent" {
			t.Errorf("expected description Rent, got %q", rt.DescriptionText())
		}
	})

	t.Run("today_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateRecurringTransaction(user.ID, RecurringTransactionInput{
			CategoryID:        &cat.ID,
			Amount:            ptr(decimal.NewFromInt(10)),
			Frequency:         ptr(models.FrequencyWeekly),
			NextExecutionDate: ptr(testutil.Date(2025, time.March, 10)),
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("past_date_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateRecurringTransaction(user.ID, RecurringTransactionInput{
			CategoryID:        &cat.ID,
			Amount:            ptr(decimal.NewFromInt(10)),
			Frequency:         ptr(models.FrequencyWeekly),
			NextExecutionDate: ptr(testutil.Date(2025, time.March, 9)),
		})
		testutil.AssertAppError(t, err, "INVALID_ARGUMENT")
	})

	t.Run("past_date_in_configured_zone", func(t *testing.T) {
		// 2025-03-10 02:00 UTC is still March 9 in New York.
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skipf("time zone data unavailable: %v", err)
		}
		db := testutil.SetupTestDB(t)
		clock := &calendar.MockClock{FixedNow: time.Date(2025, time.March, 10, 2, 0, 0, 0, time.UTC)}
		svc := NewRecurringTransactionService(db, clock, loc)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err = svc.CreateRecurringTransaction(user.ID, RecurringTransactionInput{
			CategoryID:        &cat.ID,
			Amount:            ptr(decimal.NewFromInt(10)),
			Frequency:         ptr(models.FrequencyWeekly),
			NextExecutionDate: ptr(testutil.Date(2025, time.March, 9)),
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("invalid_frequency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateRecurringTransaction(user.ID, RecurringTransactionInput{
			CategoryID:        &cat.ID,
			Amount:            ptr(decimal.NewFromInt(10)),
			Frequency:         ptr(models.Frequency("DAILY")),
			NextExecutionDate: ptr(testutil.Date(2025, time.April, 1)),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateRecurringTransaction(user.ID, RecurringTransactionInput{
			CategoryID:        &cat.ID,
			Amount:            ptr(decimal.NewFromInt(-1)),
			Frequency:         ptr(models.FrequencyYearly),
			NextExecutionDate: ptr(testutil.Date(2025, time.April, 1)),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_fields", func(t *testing.T) {
		svc, _ := newTestRecurringService(t, now)

		_, err := svc.CreateRecurringTransaction("user", RecurringTransactionInput{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		_, err := svc.CreateRecurringTransaction(user.ID, RecurringTransactionInput{
			CategoryID:        &cat.ID,
			Amount:            ptr(decimal.NewFromInt(10)),
			Frequency:         ptr(models.FrequencyMonthly),
			NextExecutionDate: ptr(testutil.Date(2025, time.April, 1)),
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetUserRecurringTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringTransactionService(db, calendar.SystemClock{}, time.UTC)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.May, 1))
	late := testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "20", models.FrequencyMonthly, testutil.Date(2025, time.June, 1))
	paused := testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "30", models.FrequencyYearly, testutil.Date(2025, time.April, 1))
	db.Model(paused).Update("is_active", false)

	all, err := svc.GetUserRecurringTransactions(user.ID, pagination.PageRequest{}, nil)
	testutil.AssertNoError(t, err)
	if all.TotalItems != 3 {
		t.Fatalf("expected 3 recurring transactions, got %d", all.TotalItems)
	}
	if all.Data[0].ID != paused.ID {
		t.Errorf("expected earliest next execution date first")
	}

	active, err := svc.GetUserRecurringTransactions(user.ID, pagination.PageRequest{}, ptr(true))
	testutil.AssertNoError(t, err)
	if active.TotalItems != 2 {
		t.Fatalf("expected 2 active recurring transactions, got %d", active.TotalItems)
	}
	if active.Data[1].ID != late.ID {
		t.Errorf("expected %s last, got %s", late.ID, active.Data[1].ID)
	}
}

func TestGetDueRecurringTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringTransactionService(db, calendar.SystemClock{}, time.UTC)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	otherCat := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

	due := testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.March, 15))
	testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.March, 16))
	inactive := testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2020, time.January, 1))
	db.Model(inactive).Update("is_active", false)
	testutil.CreateTestRecurringTransaction(t, db, other.ID, otherCat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.March, 1))

	items, err := svc.GetDueRecurringTransactions(user.ID, testutil.Date(2025, time.March, 15))
	testutil.AssertNoError(t, err)

	if len(items) != 1 || items[0].ID != due.ID {
		t.Fatalf("expected only %s to be due, got %+v", due.ID, items)
	}
}

func TestUpdateRecurringTransaction(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		rt := testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.April, 1))

		updated, err := svc.UpdateRecurringTransaction(user.ID, rt.ID, RecurringTransactionInput{
			Amount:    ptr(testutil.Amount(t, "15.5")),
			Frequency: ptr(models.FrequencyYearly),
			IsActive:  ptr(false),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertAmount(t, updated.Amount, "15.5")
		if updated.Frequency != models.FrequencyYearly {
			t.Errorf("expected YEARLY, got %s", updated.Frequency)
		}
		if updated.IsActive {
			t.Error("expected recurring transaction to be paused")
		}
		testutil.AssertDate(t, updated.NextExecutionDate, testutil.Date(2025, time.April, 1))
	})

	t.Run("past_date_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		rt := testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.April, 1))

		_, err := svc.UpdateRecurringTransaction(user.ID, rt.ID, RecurringTransactionInput{
			NextExecutionDate: ptr(testutil.Date(2025, time.March, 1)),
		})
		testutil.AssertAppError(t, err, "INVALID_ARGUMENT")
	})

	t.Run("other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewRecurringTransactionService(db, &calendar.MockClock{FixedNow: now}, time.UTC)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, owner.ID, models.CategoryTypeExpense)
		rt := testutil.CreateTestRecurringTransaction(t, db, owner.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.April, 1))

		_, err := svc.UpdateRecurringTransaction(other.ID, rt.ID, RecurringTransactionInput{IsActive: ptr(false)})
		testutil.AssertAppError(t, err, "RECURRING_TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteRecurringTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRecurringTransactionService(db, calendar.SystemClock{}, time.UTC)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	rt := testutil.CreateTestRecurringTransaction(t, db, user.ID, cat.ID, "10", models.FrequencyWeekly, testutil.Date(2025, time.April, 1))

	testutil.AssertNoError(t, svc.DeleteRecurringTransaction(user.ID, rt.ID))

	_, err := svc.GetRecurringTransactionByID(user.ID, rt.ID)
	testutil.AssertAppError(t, err, "RECURRING_TRANSACTION_NOT_FOUND")

	due, err := svc.GetDueRecurringTransactions(user.ID, testutil.Date(2030, time.January, 1))
	testutil.AssertNoError(t, err)
	if len(due) != 0 {
		t.Errorf("deleted recurring transaction should not be due, got %d", len(due))
	}
}
