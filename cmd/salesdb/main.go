/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tomoncle/salesdb"
	"github.com/tomoncle/salesdb/database"
	"github.com/tomoncle/salesdb/entity"
	"github.com/tomoncle/salesdb/transaction"
	"github.com/tomoncle/salesdb/utils"
	"github.com/uptrace/bun"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	logDir     string
	logMaxAge  int
	noSeed     bool
	adjustArgs []string
)

var log = utils.NewLogger("SALESDB")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "salesdb",
		Short:        "salesdb - department and seller records",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				utils.ConfigureLogLevel(logLevel)
			}
			if logFormat != "" {
				utils.ConfigureConsoleLogFormat(logFormat)
			}
			if logDir != "" {
				utils.ConfigureFileLog(logDir, logMaxAge)
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "db.properties", "Database configuration file (.properties, .env or .yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Console log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Also write rotated log files to this directory")
	rootCmd.PersistentFlags().IntVar(&logMaxAge, "log-max-age", 14, "Days to keep rotated log files, 0 keeps them forever")

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the department and seller tables and load demo rows",
		RunE:  withDB(runSchema),
	}
	schemaCmd.Flags().BoolVar(&noSeed, "no-seed", false, "Only create the tables")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through the department and seller operations",
		RunE:  withDB(runDemo),
	}

	raiseCmd := &cobra.Command{
		Use:     "raise-salaries",
		Short:   "Set department base salaries in one transaction",
		Example: "  salesdb raise-salaries --dept 1=2090 --dept 2=3090",
		RunE:    withDB(runRaiseSalaries),
	}
	raiseCmd.Flags().StringArrayVar(&adjustArgs, "dept", []string{"1=2090", "2=3090"}, "Department salary as ID=SALARY, repeatable")

	rootCmd.AddCommand(schemaCmd, demoCmd, raiseCmd, &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "salesdb %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})
	return rootCmd
}

type dbCommand func(ctx context.Context, out io.Writer, p *database.Provider, db *bun.DB) error

// withDB opens the configured provider for the duration of one command.
func withDB(run dbCommand) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := database.InitFromFile(configPath)
		if err != nil {
			log.WithError(err).Error("Failed to load database configuration")
			return err
		}
		defer func() {
			if err := database.Close(); err != nil {
				log.WithError(err).Warn("Failed to close database")
			}
		}()

		db, err := p.Open(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to open database")
			return err
		}
		return run(ctx, cmd.OutOrStdout(), p, db)
	}
}

func runSchema(ctx context.Context, out io.Writer, _ *database.Provider, db *bun.DB) error {
	if err := database.ApplySchema(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(out, "schema applied")
	if noSeed {
		return nil
	}
	seeded, err := database.SeedDemoData(ctx, db)
	if err != nil {
		return err
	}
	if seeded {
		fmt.Fprintln(out, "demo data loaded")
	} else {
		fmt.Fprintln(out, "demo data skipped, department table is not empty")
	}
	return nil
}

func runDemo(ctx context.Context, out io.Writer, p *database.Provider, _ *bun.DB) error {
	repos, err := salesdb.Open(ctx, p)
	if err != nil {
		return err
	}
	if err := departmentDemo(ctx, out, repos); err != nil {
		return err
	}
	return sellerDemo(ctx, out, repos)
}

func departmentDemo(ctx context.Context, out io.Writer, repos *salesdb.Repositories) error {
	deps := repos.Departments

	section(out, "department.findById")
	dept, err := deps.FindByID(ctx, 1)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, dept)

	section(out, "department.findAll")
	list, err := deps.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, d := range list {
		fmt.Fprintln(out, d)
	}

	section(out, "department.insert")
	sport := entity.NewDepartment("Sport")
	if err := deps.Insert(ctx, sport); err != nil {
		return err
	}
	fmt.Fprintln(out, sport)

	section(out, "department.update")
	sport.Name = strings.ToUpper(sport.Name)
	if err := deps.Update(ctx, sport); err != nil {
		return err
	}
	found, err := deps.FindByID(ctx, sport.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, found)

	section(out, "department.delete")
	if err := deps.DeleteByID(ctx, sport.ID); err != nil {
		return err
	}
	found, err = deps.FindByID(ctx, sport.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, found)
	return nil
}

func sellerDemo(ctx context.Context, out io.Writer, repos *salesdb.Repositories) error {
	sellers := repos.Sellers

	section(out, "seller.findById")
	seller, err := sellers.FindByID(ctx, 1)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, seller)
	if seller == nil {
		log.Warn("Seller 1 not found, run the schema command first")
		return nil
	}

	section(out, "seller.findByDepartment")
	list, err := sellers.FindByDepartment(ctx, seller.Department)
	if err != nil {
		return err
	}
	for _, s := range list {
		fmt.Fprintln(out, s)
	}

	section(out, "seller.findAll")
	if list, err = sellers.FindAll(ctx); err != nil {
		return err
	}
	for _, s := range list {
		fmt.Fprintln(out, s)
	}

	section(out, "seller.insert")
	greg := entity.NewSeller("Greg", "greg@gmail.com", time.Now(), 3500.0, seller.Department)
	if err := sellers.Insert(ctx, greg); err != nil {
		return err
	}
	fmt.Fprintln(out, greg)

	section(out, "seller.update")
	greg.Name = strings.ToUpper(greg.Name)
	if err := sellers.Update(ctx, greg); err != nil {
		return err
	}
	found, err := sellers.FindByID(ctx, greg.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, found)

	section(out, "seller.delete")
	if err := sellers.DeleteByID(ctx, greg.ID); err != nil {
		return err
	}
	found, err = sellers.FindByID(ctx, greg.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, found)
	return nil
}

func runRaiseSalaries(ctx context.Context, out io.Writer, _ *database.Provider, db *bun.DB) error {
	adjustments, err := parseAdjustments(adjustArgs)
	if err != nil {
		return err
	}
	rows, err := transaction.AdjustSalaries(ctx, db, adjustments...)
	if err != nil {
		log.WithError(err).Error("Salary adjustment failed")
		return err
	}
	for i, a := range adjustments {
		fmt.Fprintf(out, "department %d: %d rows set to %.2f\n", a.DepartmentID, rows[i], a.BaseSalary)
	}
	fmt.Fprintln(out, "done")
	return nil
}

// parseAdjustments reads ID=SALARY pairs.
func parseAdjustments(values []string) ([]transaction.SalaryAdjustment, error) {
	adjustments := make([]transaction.SalaryAdjustment, 0, len(values))
	for _, v := range values {
		id, salary, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --dept value %q, want ID=SALARY", v)
		}
		deptID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil || deptID <= 0 {
			return nil, fmt.Errorf("invalid department id in %q", v)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(salary), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid salary in %q: %w", v, err)
		}
		adjustments = append(adjustments, transaction.SalaryAdjustment{DepartmentID: deptID, BaseSalary: amount})
	}
	return adjustments, nil
}

func section(out io.Writer, title string) {
	fmt.Fprintf(out, "\n=== %s ===\n", title)
}
