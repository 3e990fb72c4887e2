package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/calendar"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/models"
	"pennywise/internal/recurrence"
)

// Outcome is the result of processing one item in a scheduled run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// ExecutionResult describes what happened to one due recurring transaction.
type ExecutionResult struct {
	RecurringTransactionID string    `json:"recurring_transaction_id"`
	UserID                 string    `json:"user_id"`
	Outcome                Outcome   `json:"outcome"`
	TransactionID          string    `json:"transaction_id,omitempty"`
	NextExecutionDate      time.Time `json:"next_execution_date,omitempty"`
	Reason                 string    `json:"reason,omitempty"`
	Err                    error     `json:"-"`
}

// ExecutionReport summarizes one run of the recurring executor.
type ExecutionReport struct {
	ScanDate  time.Time         `json:"scan_date"`
	Due       int               `json:"due"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	Results   []ExecutionResult `json:"results"`
}

func (r *ExecutionReport) add(res ExecutionResult) {
	switch res.Outcome {
	case OutcomeSucceeded:
		r.Succeeded++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	}
	r.Results = append(r.Results, res)
}

// recurringExecutionService materializes due recurring transactions into the ledger.
type recurringExecutionService struct {
	db           *gorm.DB
	transactions TransactionServicer
	audit        AuditServicer
}

// NewRecurringExecutionService creates a new RecurringExecutor.
func NewRecurringExecutionService(db *gorm.DB, transactions TransactionServicer, audit AuditServicer) RecurringExecutor {
	return &recurringExecutionService{db: db, transactions: transactions, audit: audit}
}

// ExecuteDueTransactions processes every active recurring transaction whose
// next execution date is on or before scanDate.
//
// Each item runs in its own database transaction: the ledger entry, the
// schedule advance and the audit entry commit together or not at all, and a
// failing item does not affect the others. The new next execution date is
// one period after scanDate, not after the old next execution date, so an
// item that missed several periods fires once and resumes from scanDate.
//
// The returned error is non-nil only when the due set cannot be read or ctx
// is cancelled; per-item failures are reported in the ExecutionReport.
func (s *recurringExecutionService) ExecuteDueTransactions(ctx context.Context, scanDate time.Time) (*ExecutionReport, error) {
	log := logger.Named("recurring-executor")
	scanDate = calendar.Day(scanDate)
	report := &ExecutionReport{ScanDate: scanDate, Results: []ExecutionResult{}}

	db := s.db.WithContext(ctx)

	var due []models.RecurringTransaction
	if err := db.Scopes(dueOn(scanDate)).Find(&due).Error; err != nil {
		log.Errorw("failed to load due recurring transactions", "scan_date", calendar.FormatDate(scanDate), "error", err)
		return report, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	report.Due = len(due)

	log.Infow("executing due recurring transactions", "scan_date", calendar.FormatDate(scanDate), "due", len(due))

	for i := range due {
		if err := ctx.Err(); err != nil {
			log.Warnw("recurring execution interrupted", "processed", len(report.Results), "due", len(due), "error", err)
			return report, err
		}

		res := s.executeOne(db, &due[i], scanDate)
		report.add(res)

		switch res.Outcome {
		case OutcomeFailed:
			log.Errorw("failed to execute recurring transaction",
				"recurring_transaction_id", res.RecurringTransactionID,
				"user_id", res.UserID,
				"error", res.Err,
			)
		case OutcomeSkipped:
			log.Warnw("skipped recurring transaction",
				"recurring_transaction_id", res.RecurringTransactionID,
				"reason", res.Reason,
			)
		}
	}

	log.Infow("recurring execution finished",
		"scan_date", calendar.FormatDate(scanDate),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (s *recurringExecutionService) executeOne(db *gorm.DB, rt *models.RecurringTransaction, scanDate time.Time) ExecutionResult {
	res := ExecutionResult{RecurringTransactionID: rt.ID, UserID: rt.UserID}

	var created *models.Transaction
	next := recurrence.Next(scanDate, rt.Frequency)

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", rt.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if _, err := findCategory(tx, user.ID, rt.CategoryID); err != nil {
			return err
		}

		rtID := rt.ID
		var err error
		created, err = s.transactions.CreateTransactionForUser(tx, user.ID, NewTransaction{
			CategoryID:             rt.CategoryID,
			Amount:                 rt.Amount,
			Date:                   scanDate,
			Description:            rt.DescriptionText(),
			IsPlanned:              false,
			RecurringTransactionID: &rtID,
		})
		if err != nil {
			return err
		}

		// Guarded by the date read above so a concurrent run cannot fire
		// the same period twice.
		advanced := tx.Model(&models.RecurringTransaction{}).
			Where("id = ? AND is_active = ? AND next_execution_date = ?", rt.ID, true, rt.NextExecutionDate).
			Updates(map[string]interface{}{
				"last_execution_date": scanDate,
				"next_execution_date": next,
			})
		if advanced.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, advanced.Error)
		}
		if advanced.RowsAffected == 0 {
			return apperrors.ErrScheduleAlreadyAdvanced
		}

		return s.audit.Record(tx, AuditEntry{
			UserID:       user.ID,
			Actor:        models.SchedulerActor,
			Action:       "EXECUTE_RECURRING_TRANSACTION",
			ResourceType: "recurring_transaction",
			ResourceID:   rt.ID,
			Changes: map[string]any{
				"transaction_id":      created.ID,
				"amount":              created.Amount.StringFixed(models.AmountScale),
				"last_execution_date": calendar.FormatDate(scanDate),
				"next_execution_date": calendar.FormatDate(next),
			},
		})
	})

	switch {
	case err == nil:
		res.Outcome = OutcomeSucceeded
		res.TransactionID = created.ID
		res.NextExecutionDate = next
	case errors.Is(err, apperrors.ErrScheduleAlreadyAdvanced):
		res.Outcome = OutcomeSkipped
		res.Reason = "already advanced by another run"
	default:
		res.Outcome = OutcomeFailed
		res.Err = err
		res.Reason = reasonFor(err)
	}
	return res
}

// reasonFor renders err for the report without leaking storage details.
func reasonFor(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fmt.Sprintf("%s: %s", appErr.Code, appErr.Message)
	}
	return err.Error()
}
