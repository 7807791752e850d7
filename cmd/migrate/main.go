package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"grantbot/migrations"
)

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/grants.db"), "path to sqlite database")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-db path] <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  up          Migrate to the latest version")
		fmt.Fprintln(os.Stderr, "  up-one      Migrate one version up")
		fmt.Fprintln(os.Stderr, "  down        Roll back one version")
		fmt.Fprintln(os.Stderr, "  status      Show migration status")
		fmt.Fprintln(os.Stderr, "  version     Show current version")
		fmt.Fprintln(os.Stderr, "  reset       Roll back all migrations")
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	p, err := migrations.NewProvider(db)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	cmd := args[0]
	switch cmd {
	case "up":
		err = printResults(p.Up(ctx))
	case "up-one":
		err = printResult(p.UpByOne(ctx))
	case "down":
		err = printResult(p.Down(ctx))
	case "reset":
		err = printResults(p.DownTo(ctx, 0))
	case "status":
		err = printStatus(p.Status(ctx))
	case "version":
		var v int64
		v, err = p.GetDBVersion(ctx)
		if err == nil {
			fmt.Printf("version %d\n", v)
		}
	default:
		log.Fatalf("unknown command: %s", cmd)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func printResult(r *goose.MigrationResult, err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%s)\n", r.Direction, r.Source.Path, r.Duration)
	return nil
}

func printResults(rs []*goose.MigrationResult, err error) error {
	for _, r := range rs {
		fmt.Printf("%s %s (%s)\n", r.Direction, r.Source.Path, r.Duration)
	}
	if len(rs) == 0 && err == nil {
		fmt.Println("no migrations to apply")
	}
	return err
}

func printStatus(sts []*goose.MigrationStatus, err error) error {
	if err != nil {
		return err
	}
	for _, s := range sts {
		applied := "pending"
		if s.State == goose.StateApplied {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-24s %s\n", applied, s.Source.Path)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
