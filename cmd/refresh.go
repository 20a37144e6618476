package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	certPG "github.com/frahmantamala/certification-management/internal/certification/postgres"
	"github.com/frahmantamala/certification-management/internal/eligibility"
	eligPG "github.com/frahmantamala/certification-management/internal/eligibility/postgres"
	employeePG "github.com/frahmantamala/certification-management/internal/employee/postgres"
	rulePG "github.com/frahmantamala/certification-management/internal/rule/postgres"
	"github.com/frahmantamala/certification-management/pkg/logger"
	"github.com/spf13/cobra"
)

var refreshInterval time.Duration

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute eligibility for all active employees",
	Long: `Runs a full eligibility refresh: reconciles required certifications for
every active employee and synchronizes statuses from recorded certifications.
With --interval the refresh repeats until interrupted, which is the intended
way to run the nightly recomputation.`,
	Run: func(cmd *cobra.Command, args []string) {
		runRefresh()
	},
}

func runRefresh() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		lg.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gdb, err := initGorm(db)
	if err != nil {
		lg.Error("failed to initialize orm", "error", err)
		os.Exit(1)
	}

	service := eligibility.NewService(
		eligPG.NewEligibilityRepository(gdb),
		employeePG.NewEmployeeRepository(gdb),
		rulePG.NewRuleRepository(gdb),
		certPG.NewCertificationRepository(gdb),
		lg,
		config.Eligibility.ChunkSize(),
		config.Eligibility.BatchSize(),
	)

	refreshOnce := func() {
		start := time.Now()
		rows, err := service.RefreshAll()
		if err != nil {
			lg.Error("eligibility refresh failed", "error", err)
			return
		}
		lg.Info("eligibility refresh complete",
			"rows_touched", rows,
			"duration_ms", time.Since(start).Milliseconds())
	}

	refreshOnce()

	if refreshInterval <= 0 {
		return
	}

	lg.Info("refresh loop running", "interval", refreshInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refreshOnce()
		case sig := <-sigChan:
			lg.Info("received signal, stopping refresh loop", "signal", sig)
			return
		}
	}
}

func init() {
	refreshCmd.Flags().DurationVar(&refreshInterval, "interval", 0, "Repeat the refresh on this interval (0 runs once)")

	rootCmd.AddCommand(refreshCmd)
}
