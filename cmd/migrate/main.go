// Command migrate applies the embedded schema migrations to the triage
// database.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/smartclass/triage/internal/config"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "TRIAGE_DB_DSN"

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dsn, "dsn", "", "postgres URL (default $"+envDSN+", then the [database] config)")
	flag.BoolVar(&o.up, "up", false, "apply every pending migration")
	flag.BoolVar(&o.down, "down", false, "revert every applied migration")
	flag.IntVar(&o.steps, "steps", 0, "apply N migrations, or revert -N")
	flag.BoolVar(&o.version, "version", false, "print the current schema version")
	flag.IntVar(&o.force, "force", -1, "mark the schema as version N without running it")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) { o.forced = o.forced || f.Name == "force" })
	return o
}

func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Database.URL(), nil
}

// apply runs the selected action and returns a line describing the result.
// A false ok means no action was selected.
func apply(m *migrate.Migrate, o options) (msg string, ok bool, err error) {
	ignoreNoChange := func(err error) error {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}

	switch {
	case o.version:
		v, dirty, err := m.Version()
		if err != nil {
			return "", true, fmt.Errorf("read version: %w", err)
		}
		return fmt.Sprintf("version %d (dirty=%t)", v, dirty), true, nil
	case o.forced:
		return fmt.Sprintf("forced to version %d", o.force), true, m.Force(o.force)
	case o.up:
		return "schema up to date", true, ignoreNoChange(m.Up())
	case o.down:
		return "schema reverted", true, ignoreNoChange(m.Down())
	case o.steps != 0:
		return fmt.Sprintf("moved %d steps", o.steps), true, ignoreNoChange(m.Steps(o.steps))
	}
	return "", false, nil
}

func main() {
	o := parseFlags()

	dsn, err := resolveDSN(o.dsn)
	if err != nil {
		log.Fatal(err)
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatalf("open embedded migrations: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer m.Close()

	msg, ok, err := apply(m, o)
	switch {
	case err != nil:
		log.Fatal(err)
	case !ok:
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn URL] -up | -down | -steps N | -version | -force N")
		flag.PrintDefaults()
		os.Exit(2)
	}
	fmt.Println(msg)
}
