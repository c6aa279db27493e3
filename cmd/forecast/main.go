// cmd/forecast/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/buildstok/inventory/backend-go/internal/cache"
	"github.com/buildstok/inventory/backend-go/internal/forecast"
	"github.com/buildstok/inventory/backend-go/internal/repository/postgres"
	"github.com/buildstok/inventory/backend-go/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newEngine(c *cli.Context) (*forecast.Engine, *sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	materials := postgres.NewMaterialRepository(db)
	consumption := postgres.NewConsumptionRepository(db)

	return forecast.NewEngine(materials, consumption, c.Int("workers")), db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Run replenishment forecasts from the command line",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of materials forecasted in parallel",
				Value: 4,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Generate the full triaged forecast list",
				Action: func(c *cli.Context) error {
					engine, db, err := newEngine(c)
					if err != nil {
						return err
					}
					defer db.Close()

					records, err := engine.GenerateForecasts(c.Context)
					if err != nil {
						return fmt.Errorf("forecast run failed: %w", err)
					}

					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "URGENCY\tMATERIAL\tSTOCK\tDAILY RATE\tDAYS LEFT\tREORDER AT\tORDER QTY")
					for _, r := range records {
						daysLeft := "-"
						if r.DaysUntilStockout != nil {
							daysLeft = fmt.Sprintf("%d", *r.DaysUntilStockout)
						}
						fmt.Fprintf(w, "%s\t%s\t%.1f %s\t%.2f\t%s\t%.1f\t%.1f\n",
							r.Urgency, r.MaterialName, r.CurrentStock, r.Unit,
							r.DailyConsumptionRate, daysLeft, r.ReorderPoint, r.RecommendedOrderQty)
					}
					return w.Flush()
				},
			},
			{
				Name:  "projection",
				Usage: "Print the 30-day depletion curve for one material",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "material",
						Usage:    "Material id to project",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					engine, db, err := newEngine(c)
					if err != nil {
						return err
					}
					defer db.Close()

					points, err := engine.Project30Days(c.Context, c.String("material"))
					if err != nil {
						return fmt.Errorf("projection failed: %w", err)
					}

					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "DATE\tEXPECTED STOCK\tBELOW REORDER\tBELOW CRITICAL")
					for _, p := range points {
						fmt.Fprintf(w, "%s\t%.2f\t%v\t%v\n",
							p.Date.Format("2006-01-02"), p.ExpectedStock, p.IsBelowReorder, p.IsBelowCritical)
					}
					return w.Flush()
				},
			},
			{
				Name:  "export",
				Usage: "Write the forecast list to an XLSX report",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "Directory for the XLSX report",
						Value: "./data/exports",
					},
				},
				Action: func(c *cli.Context) error {
					engine, db, err := newEngine(c)
					if err != nil {
						return err
					}
					defer db.Close()

					forecasts := service.NewForecastService(engine, cache.NewNoopForecastCache())
					export := service.NewExportService(forecasts, nil, c.String("out-dir"))

					path, err := export.ExportForecastXLSX(c.Context)
					if err != nil {
						return fmt.Errorf("export failed: %w", err)
					}

					fmt.Printf("wrote %s\n", path)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
