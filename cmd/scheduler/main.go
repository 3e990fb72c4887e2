package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pennywise/internal/calendar"
	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/logger"
	"pennywise/internal/scheduler"
	"pennywise/internal/services"
)

var (
	scanDate    string
	targetMonth string
	migrateDB   bool
)

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run Pennywise scheduled jobs",
	Long:  `Runs the recurring transaction and monthly budget jobs, either continuously or once.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Getenv("ENV"))
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run both jobs on their schedules until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngines(cmd.Context(), func(ctx context.Context, e *engines) error {
			clock := calendar.SystemClock{}
			sched := scheduler.NewFromConfig(e.cfg.Scheduler, clock, e.executor, e.materializer)
			for _, job := range sched.Jobs() {
				logger.Get().Infow("job registered", "job", job.Name, "rule", job.Rule.String())
			}
			return sched.Run(ctx)
		})
	},
}

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Execute due recurring transactions once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngines(cmd.Context(), func(ctx context.Context, e *engines) error {
			day := calendar.Today(calendar.SystemClock{}, e.cfg.Scheduler.Location)
			if scanDate != "" {
				d, err := calendar.ParseDate(scanDate)
				if err != nil {
					return err
				}
				day = d
			}
			report, err := e.executor.ExecuteDueTransactions(ctx, day)
			if err != nil {
				return err
			}
			return printReport(report)
		})
	},
}

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "Materialize monthly budgets once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngines(cmd.Context(), func(ctx context.Context, e *engines) error {
			month := calendar.MonthOf(time.Now().In(e.cfg.Scheduler.Location))
			if targetMonth != "" {
				m, err := calendar.ParseMonth(targetMonth)
				if err != nil {
					return err
				}
				month = m
			}
			report, err := e.materializer.MaterializeMonthlyBudgets(ctx, month)
			if err != nil {
				return err
			}
			return printReport(report)
		})
	},
}

type engines struct {
	cfg          *config.Config
	executor     services.RecurringExecutor
	materializer services.BudgetMaterializer
}

// withEngines connects to the database, builds the engines and runs fn
// until it returns or the process is interrupted.
func withEngines(parent context.Context, fn func(ctx context.Context, e *engines) error) error {
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}()

	if migrateDB {
		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	db := dbManager.DB()
	audit := services.NewAuditService(db)
	e := &engines{
		cfg:          cfg,
		executor:     services.NewRecurringExecutionService(db, services.NewTransactionService(db), audit),
		materializer: services.NewBudgetMaterializer(db, audit),
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, e)
}

func printReport(report any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&migrateDB, "migrate", false, "Apply pending migrations before running")
	recurringCmd.Flags().StringVar(&scanDate, "date", "", "Scan date (YYYY-MM-DD), defaults to today")
	budgetsCmd.Flags().StringVar(&targetMonth, "month", "", "Target month (YYYY-MM), defaults to the current month")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recurringCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
