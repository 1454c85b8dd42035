package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dpatkar/surgeplan/internal/config"
	"github.com/dpatkar/surgeplan/pkg/clients/forecastclient"
	"github.com/dpatkar/surgeplan/pkg/clients/sheetsclient"
	"github.com/dpatkar/surgeplan/pkg/clients/snapshotclient"
	"github.com/dpatkar/surgeplan/pkg/core/catalog"
	"github.com/dpatkar/surgeplan/pkg/core/directive"
	"github.com/dpatkar/surgeplan/pkg/core/services"
	"github.com/dpatkar/surgeplan/pkg/postgres"
	"github.com/dpatkar/surgeplan/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg       *config.Config
	oauthCfg  *config.OAuthClientConfig
	forecasts services.ForecastSource
	snapshots services.SnapshotSource
	roster    services.RosterSource
	store     *directive.Store
	database  *postgres.DB
	kb        *catalog.KnowledgeBase
	calendar  *catalog.SurgeCalendar
	logger    *zap.Logger
	ctx       context.Context
}

var (
	env     string
	verbose bool
	app     *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "surgeplan",
		Short: "SurgePlan CLI - Hospital surge resource allocation",
		Long:  `A CLI tool for turning patient surge forecasts into resource allocation directives: procurement actions, staffing mitigations, and operational advisories.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.database != nil {
				app.database.Close()
			}
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	// Add all commands
	rootCmd.AddCommand(generateAllocationCmd())
	rootCmd.AddCommand(viewDirectiveCmd())
	rootCmd.AddCommand(listConditionsCmd())
	rootCmd.AddCommand(surgeWindowsCmd())
	rootCmd.AddCommand(migrateDbCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, data sources, and the directive store
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Build the condition knowledge base and the surge calendar
	app.kb = catalog.NewKnowledgeBase()
	if len(app.cfg.SurgeCalendar) > 0 {
		entries := make([]catalog.CalendarEntry, 0, len(app.cfg.SurgeCalendar))
		for _, window := range app.cfg.SurgeCalendar {
			entries = append(entries, catalog.CalendarEntry{
				Label:        window.Label,
				Kind:         window.Kind,
				RRule:        window.RRule,
				DurationDays: window.DurationDays,
			})
		}
		app.calendar, err = catalog.NewSurgeCalendar(entries)
		if err != nil {
			return fmt.Errorf("failed to build surge calendar: %w", err)
		}
		app.logger.Debug("Surge calendar ready", zap.Int("windows", len(entries)))
	}

	// Initialize the forecast source
	switch app.cfg.Forecast.Source {
	case config.ForecastSourceHTTP:
		app.forecasts = forecastclient.NewHTTPSource(app.cfg.Forecast.BaseURL, app.logger)
	default:
		app.forecasts = forecastclient.NewFileSource(app.cfg.Forecast.Dir, app.logger)
	}
	app.logger.Debug("Forecast source ready", zap.String("source", app.cfg.Forecast.Source))

	// Initialize the snapshot source
	switch app.cfg.Snapshots.Source {
	case config.SnapshotSourcePostgres:
		app.logger.Info("Connecting to snapshot database")
		app.database, err = postgres.NewDB(app.ctx, app.cfg.Snapshots.PostgresURL, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to snapshot database: %w", err)
		}
		app.snapshots = app.database
	case config.SnapshotSourceXLSX:
		app.snapshots = snapshotclient.NewXLSXSource(app.cfg.Snapshots.InventoryPath, app.cfg.Snapshots.StaffingPath, app.logger)
	default:
		app.snapshots = snapshotclient.NewCSVSource(app.cfg.Snapshots.InventoryPath, app.cfg.Snapshots.StaffingPath, app.logger)
	}
	app.logger.Debug("Snapshot source ready", zap.String("source", app.cfg.Snapshots.Source))

	// Initialize the live on-call roster sheet when enabled
	if app.cfg.RosterSheet.Enabled {
		app.logger.Info("Loading OAuth client configuration")
		app.oauthCfg, err = config.LoadOAuthClientWithEnv(env)
		if err != nil {
			return fmt.Errorf("failed to load OAuth client config: %w", err)
		}

		app.logger.Info("Initializing sheets client")
		sheets, err := sheetsclient.NewClient(app.ctx, app.oauthCfg, env)
		if err != nil {
			return fmt.Errorf("failed to create sheets client: %w", err)
		}
		app.roster = sheetsclient.NewRosterSource(sheets, app.cfg)
		app.logger.Debug("Sheets client initialized successfully")
	}

	app.store = directive.NewStore(app.cfg.OutputDir)

	return nil
}

// Command definitions

func generateAllocationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateAllocation",
		Short: "Run the allocation pipeline and write a logistics directive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			condition, _ := cmd.Flags().GetString("condition")
			department, _ := cmd.Flags().GetString("department")
			output, _ := cmd.Flags().GetString("output")

			app.logger.Info("generateAllocation command",
				zap.String("condition", condition),
				zap.String("department", department))

			result, err := services.GenerateAllocation(
				app.ctx,
				app.forecasts,
				app.snapshots,
				app.roster,
				app.store,
				app.kb,
				app.calendar,
				app.cfg,
				app.logger,
				condition,
				department,
				output,
				time.Now(),
			)
			if err != nil {
				return err
			}

			// Display results
			fmt.Print(services.FormatSummary(result))
			fmt.Printf("\n[OK] Results saved to: %s\n", result.OutputPath)

			fmt.Printf("\n✓ Resource allocation completed successfully!\n\n")
			fmt.Printf("Condition:   %s", result.Condition)
			if result.ConditionDetected {
				fmt.Printf(" (auto-detected)")
			}
			fmt.Println()
			fmt.Printf("Peak Date:   %s (%d days out)\n", result.PeakDate.Format("2006-01-02"), result.DaysUntilSurge)
			fmt.Printf("Models Used: %d\n", result.ModelCount)
			if result.FallbackForecast {
				fmt.Printf("\n⚠️  Forecast data was unavailable. Planned against the conservative fallback surge.\n")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("condition", "auto", fmt.Sprintf("Surge condition: auto or one of %s", strings.Join(catalog.ConditionAliases(), ", ")))
	cmd.Flags().String("department", "", "Target department (defaults to the configured department)")
	cmd.Flags().String("output", "", "Output JSON file path (defaults to a timestamped file in the output directory)")

	return cmd
}

func viewDirectiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "viewDirective",
		Short: "Show the latest allocation directive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("viewDirective command")

			result, err := services.ViewDirective(app.ctx, app.store, app.logger)
			if err != nil {
				if errors.Is(err, directive.ErrNoDirectives) {
					fmt.Println("No allocation directives found. Run generateAllocation first.")
					return nil
				}
				return err
			}

			overview := result.Overview
			fmt.Printf("\nLatest directive: %s (%d on file)\n\n", result.Path, result.TotalDirectives)
			fmt.Printf("Generated:          %s\n", overview.Timestamp)
			fmt.Printf("Target Date:        %s\n", overview.Date)
			fmt.Printf("Surge Context:      %s\n", overview.SurgeContext)
			fmt.Printf("Predicted Patients: %d\n", overview.PredictedPatients)
			fmt.Printf("Staff Needed:       %d (current: %d, shortage: %d)\n",
				overview.TotalStaffNeeded, overview.CurrentStaff, overview.StaffShortage)

			if len(overview.Departments) > 0 {
				fmt.Printf("\nDepartment breakdown:\n")
				for _, dept := range overview.Departments {
					fmt.Printf("  %s (%d staff needed)\n", dept.Department, dept.StaffNeeded)
					for _, role := range dept.Roles {
						fmt.Printf("    - %-22s %-18s x%d\n", role.Role, role.Action, role.Count)
					}
				}
			}
			fmt.Println()

			return nil
		},
	}
}

func listConditionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listConditions",
		Short: "List the surge conditions and their resource profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("listConditions command")

			fmt.Printf("\nKnown surge conditions:\n\n")
			for _, mapping := range app.kb.Mappings() {
				fmt.Printf("%s (%s)\n", mapping.Name, mapping.Condition)
				fmt.Printf("  %s\n", mapping.Description)

				fmt.Printf("  Staffing:\n")
				for _, staff := range mapping.Staffing {
					onCall := ""
					if staff.OnCallAcceptable {
						onCall = ", on-call ok"
					}
					fmt.Printf("    - %s: %.2f per patient (%s%s)\n", staff.Role, staff.Ratio, staff.Priority, onCall)
				}

				fmt.Printf("  Inventory:\n")
				for _, item := range mapping.Inventory {
					fmt.Printf("    - %s [%s]: %.1f %s per patient (%s, lead %dd)\n",
						item.ItemName, item.SKU, item.UnitsPerPatient, item.UnitType, item.Priority, item.LeadTimeDays)
				}
				fmt.Println()
			}

			return nil
		},
	}
}

func surgeWindowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surgeWindows",
		Short: "Preview upcoming surge calendar windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")

			app.logger.Info("surgeWindows command", zap.Int("days", days))

			if app.calendar == nil {
				fmt.Println("No surge calendar configured.")
				return nil
			}

			start := time.Now()
			occurrences := app.calendar.OccurrencesBetween(start, start.AddDate(0, 0, days))
			if len(occurrences) == 0 {
				fmt.Printf("No surge windows in the next %d days.\n", days)
				return nil
			}

			sort.Slice(occurrences, func(i, j int) bool {
				return occurrences[i].Start.Before(occurrences[j].Start)
			})

			fmt.Printf("\nSurge windows in the next %d days:\n\n", days)
			for _, occurrence := range occurrences {
				end := occurrence.Start.AddDate(0, 0, occurrence.DurationDays-1)
				fmt.Printf("  %s to %s  %s (%s)\n",
					occurrence.Start.Format("2006-01-02"), end.Format("2006-01-02"),
					occurrence.Label, occurrence.Kind)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Int("days", 90, "How far ahead to look")

	return cmd
}

func migrateDbCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrateDb",
		Short: "Apply snapshot database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.logger.Info("migrateDb command")

			database := app.database
			if database == nil {
				if app.cfg.Snapshots.PostgresURL == "" {
					return fmt.Errorf("snapshots.postgresURL must be configured to run migrations")
				}

				var err error
				database, err = postgres.NewDB(app.ctx, app.cfg.Snapshots.PostgresURL, app.logger)
				if err != nil {
					return fmt.Errorf("failed to connect to snapshot database: %w", err)
				}
				defer database.Close()
			}

			if err := database.RunMigrations(app.ctx); err != nil {
				return err
			}

			fmt.Println("\n✓ Snapshot database migrations applied!")
			return nil
		},
	}
}
