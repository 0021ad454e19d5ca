package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/andalib/andalib-backend/pkg/config"
	"github.com/andalib/andalib-backend/pkg/db"
	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/migrate"
)

const usage = `usage: migrate <command> [flags]

commands:
  up                 apply all pending migrations
  down               roll back the latest migration
  status             list migrations and whether they are applied
  to -version N      move the schema to version N
  create -name NAME  write a new SQL migration into -dir
  validate           check the embedded migration files
`

func main() {
	_ = godotenv.Load()

	fset := flag.NewFlagSet("migrate", flag.ExitOnError)
	fset.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	dir := fset.String("dir", migrate.DefaultDir, "directory new migrations are written to")
	name := fset.String("name", "", "migration name (create)")
	version := fset.String("version", "", "target version YYYYMMDDHHMMSS (to)")

	if len(os.Args) < 2 {
		fset.Usage()
		os.Exit(2)
	}
	command := os.Args[1]
	if err := fset.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	switch command {
	case "create":
		if *name == "" {
			fail("missing -name for create", nil)
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fail("create migration", err)
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := migrate.Validate(); err != nil {
			fail("validate migrations", err)
		}
		fmt.Println("migrations ok")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail("load config", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "andalib-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": command,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(ctx, "extract sql.DB", err)
		os.Exit(1)
	}

	switch command {
	case "up":
		applied, err := migrate.Up(ctx, sqlDB)
		if err != nil {
			logg.Error(ctx, "goose up failed", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrations applied")
	case "down":
		v, err := migrate.Down(ctx, sqlDB)
		if err != nil {
			logg.Error(ctx, "goose down failed", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "version", v), "migration rolled back")
	case "status":
		states, err := migrate.Status(ctx, sqlDB)
		if err != nil {
			logg.Error(ctx, "goose status failed", err)
			os.Exit(1)
		}
		printStatus(states)
	case "to":
		target, err := strconv.ParseInt(*version, 10, 64)
		if err != nil {
			fail("invalid -version", err)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, target); err != nil {
			logg.Error(ctx, "goose migrate-to failed", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "version", target), "schema at target version")
	default:
		fset.Usage()
		os.Exit(2)
	}
}

func printStatus(states []migrate.State) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tAPPLIED AT\tFILE")
	for _, s := range states {
		applied := "pending"
		if s.Applied {
			applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, applied, s.Path)
	}
	_ = w.Flush()
}

func fail(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
