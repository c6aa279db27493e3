// cmd/seed/main.go
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/repository"
	"github.com/buildstok/inventory/backend-go/internal/repository/postgres"
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

func newFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Usage:    "Path to the input CSV",
		Required: true,
	}
}

func openRepos(c *cli.Context) (repository.MaterialRepository, repository.ConsumptionRepository, *sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return postgres.NewMaterialRepository(db), postgres.NewConsumptionRepository(db), db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with materials and consumption history",
		Commands: []*cli.Command{
			{
				Name:  "materials",
				Usage: "Seed materials from CSV (id,name,unit,current_stock,min_stock,critical_threshold,lead_time_days,unit_price)",
				Flags: []cli.Flag{newDBURLFlag(), newFileFlag()},
				Action: func(c *cli.Context) error {
					materials, _, db, err := openRepos(c)
					if err != nil {
						return err
					}
					defer db.Close()

					count := 0
					err = forEachRecord(c.String("file"), 8, func(rec []string) error {
						m := &domain.Material{
							ID:                rec[0],
							Name:              rec[1],
							Unit:              rec[2],
							CurrentStock:      parseFloat(rec[3]),
							MinStock:          parseFloat(rec[4]),
							CriticalThreshold: parseFloat(rec[5]),
							LeadTimeDays:      parseInt(rec[6]),
							UnitPrice:         parseFloat(rec[7]),
						}
						if err := materials.CreateMaterial(c.Context, m); err != nil {
							return err
						}
						count++
						return nil
					})
					if err != nil {
						return err
					}

					log.Printf("seeded %d materials", count)
					return nil
				},
			},
			{
				Name:  "consumption",
				Usage: "Seed consumption events from CSV (material_id,quantity_used,recorded_at,delivery_id)",
				Flags: []cli.Flag{newDBURLFlag(), newFileFlag()},
				Action: func(c *cli.Context) error {
					_, consumption, db, err := openRepos(c)
					if err != nil {
						return err
					}
					defer db.Close()

					count := 0
					err = forEachRecord(c.String("file"), 3, func(rec []string) error {
						recordedAt, err := parseDate(rec[2])
						if err != nil {
							return fmt.Errorf("bad recorded_at %q: %w", rec[2], err)
						}

						e := &domain.ConsumptionEvent{
							MaterialID:   rec[0],
							QuantityUsed: parseFloat(rec[1]),
							RecordedAt:   recordedAt,
						}
						if len(rec) > 3 && rec[3] != "" {
							id, err := strconv.ParseInt(rec[3], 10, 64)
							if err != nil {
								return fmt.Errorf("bad delivery_id %q: %w", rec[3], err)
							}
							e.DeliveryID = &id
						}

						if err := consumption.RecordConsumption(c.Context, e); err != nil {
							return err
						}
						count++
						return nil
					})
					if err != nil {
						return err
					}

					log.Printf("seeded %d consumption events", count)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// forEachRecord streams a CSV file, skipping the header row, and calls fn for
// every record with at least minFields fields.
func forEachRecord(path string, minFields int, fn func(rec []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed reading %s: %w", path, err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < minFields {
			return fmt.Errorf("record in %s has %d fields, want at least %d", path, len(rec), minFields)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
