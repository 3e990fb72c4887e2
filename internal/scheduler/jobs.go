package scheduler

import (
	"context"
	"time"

	"pennywise/internal/calendar"
	"pennywise/internal/config"
	"pennywise/internal/services"
)

// Names of the standard jobs.
const (
	RecurringTransactionsJob = "recurring-transactions"
	MonthlyBudgetsJob        = "monthly-budgets"
)

// RecurringTransactions fires the recurring executor once a day with the
// current date in loc as the scan date.
func RecurringTransactions(exec services.RecurringExecutor, at config.TimeOfDay, loc *time.Location) Job {
	rule := Daily(at.Hour, at.Minute, loc)
	return Job{
		Name: RecurringTransactionsJob,
		Rule: rule,
		Run: func(ctx context.Context, firedAt time.Time) error {
			_, err := exec.ExecuteDueTransactions(ctx, calendar.Day(firedAt.In(rule.Location())))
			return err
		},
	}
}

// MonthlyBudgets fires the budget materializer on the first of every month
// for the month that has just started in loc.
func MonthlyBudgets(m services.BudgetMaterializer, at config.TimeOfDay, loc *time.Location) Job {
	rule := MonthlyOnFirst(at.Hour, at.Minute, loc)
	return Job{
		Name: MonthlyBudgetsJob,
		Rule: rule,
		Run: func(ctx context.Context, firedAt time.Time) error {
			_, err := m.MaterializeMonthlyBudgets(ctx, calendar.MonthOf(firedAt.In(rule.Location())))
			return err
		},
	}
}

// NewFromConfig builds a scheduler carrying both standard jobs.
func NewFromConfig(cfg config.SchedulerConfig, clock calendar.Clock, exec services.RecurringExecutor, m services.BudgetMaterializer, opts ...Option) *Scheduler {
	opts = append([]Option{WithRunOnStartup(cfg.RunOnStartup)}, opts...)
	s := New(clock, opts...)
	s.Add(RecurringTransactions(exec, cfg.RecurringAt, cfg.Location))
	s.Add(MonthlyBudgets(m, cfg.BudgetsAt, cfg.Location))
	return s
}
