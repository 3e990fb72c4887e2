package services

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pennywise/internal/calendar"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// MaterializationResult describes what happened to one active template.
type MaterializationResult struct {
	BudgetTemplateID string  `json:"budget_template_id"`
	UserID           string  `json:"user_id"`
	CategoryID       string  `json:"category_id"`
	Outcome          Outcome `json:"outcome"`
	BudgetID         string  `json:"budget_id,omitempty"`
	Reason           string  `json:"reason,omitempty"`
	Err              error   `json:"-"`
}

// MaterializationReport summarizes one run of the budget materializer.
// Skipped counts templates whose budget already existed for the month.
type MaterializationReport struct {
	Month     string                  `json:"month"`
	Templates int                     `json:"templates"`
	Created   int                     `json:"created"`
	Skipped   int                     `json:"skipped"`
	Failed    int                     `json:"failed"`
	Results   []MaterializationResult `json:"results"`
}

func (r *MaterializationReport) add(res MaterializationResult) {
	switch res.Outcome {
	case OutcomeSucceeded:
		r.Created++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// budgetMaterializer creates monthly budgets from active templates.
type budgetMaterializer struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewBudgetMaterializer creates a new BudgetMaterializer.
func NewBudgetMaterializer(db *gorm.DB, audit AuditServicer) BudgetMaterializer {
	return &budgetMaterializer{db: db, audit: audit}
}

// MaterializeMonthlyBudgets ensures a budget exists for every active template
// in month. The insert is conditional on the (user, category, month) unique
// key, so running it again for the same month creates nothing. Templates are
// not gated on their start month.
func (m *budgetMaterializer) MaterializeMonthlyBudgets(ctx context.Context, month calendar.Month) (*MaterializationReport, error) {
	log := logger.Named("budget-materializer")
	report := &MaterializationReport{Month: month.String(), Results: []MaterializationResult{}}

	db := m.db.WithContext(ctx)

	var templates []models.BudgetTemplate
	if err := db.Where("active = ?", true).Order("id").Find(&templates).Error; err != nil {
		log.Errorw("failed to load active budget templates", "month", month.String(), "error", err)
		return report, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	report.Templates = len(templates)

	log.Infow("materializing monthly budgets", "month", month.String(), "templates", len(templates))

	for i := range templates {
		if err := ctx.Err(); err != nil {
			log.Warnw("budget materialization interrupted", "processed", len(report.Results), "templates", len(templates), "error", err)
			return report, err
		}

		res := m.materializeOne(db, &templates[i], month)
		report.add(res)

		if res.Outcome == OutcomeFailed {
			log.Errorw("failed to materialize budget",
				"budget_template_id", res.BudgetTemplateID,
				"user_id", res.UserID,
				"category_id", res.CategoryID,
				"error", res.Err,
			)
		}
	}

	log.Infow("budget materialization finished",
		"month", month.String(),
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

func (m *budgetMaterializer) materializeOne(db *gorm.DB, tmpl *models.BudgetTemplate, month calendar.Month) MaterializationResult {
	res := MaterializationResult{
		BudgetTemplateID: tmpl.ID,
		UserID:           tmpl.UserID,
		CategoryID:       tmpl.CategoryID,
	}

	var created bool
	budget := &models.Budget{
		UserID:      tmpl.UserID,
		CategoryID:  tmpl.CategoryID,
		Month:       month.Start(),
		LimitAmount: tmpl.Amount,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findCategory(tx, tmpl.UserID, tmpl.CategoryID); err != nil {
			return err
		}

		inserted := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "month"}},
			DoNothing: true,
		}).Create(budget)
		if inserted.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, inserted.Error)
		}
		if inserted.RowsAffected == 0 {
			return nil
		}
		created = true

		return m.audit.Record(tx, AuditEntry{
			UserID:       tmpl.UserID,
			Actor:        models.SchedulerActor,
			Action:       "MATERIALIZE_BUDGET",
			ResourceType: "budget",
			ResourceID:   budget.ID,
			Changes: map[string]any{
				"budget_template_id": tmpl.ID,
				"month":              month.String(),
				"limit_amount":       budget.LimitAmount.StringFixed(models.AmountScale),
			},
		})
	})

	switch {
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Err = err
		res.Reason = reasonFor(err)
	case created:
		res.Outcome = OutcomeSucceeded
		res.BudgetID = budget.ID
	default:
		res.Outcome = OutcomeSkipped
		res.Reason = "budget already exists for month"
	}
	return res
}
