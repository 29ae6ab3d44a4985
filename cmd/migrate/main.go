package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/db"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/migrate"
	"github.com/angelmondragon/urgency-engine/pkg/security"
	"github.com/joho/godotenv"
)

const usage = "up|down|status|version|create|validate|automigrate|hash-password"

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "command: "+usage)
	dir := flag.String("dir", "", "migrations directory (default: embedded set; create/validate use "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name (create)")
	version := flag.String("version", "", "target version YYYYMMDDHHMMSS (version)")
	flag.Parse()

	// offline commands need neither the service env nor a database
	offlineDir := *dir
	if offlineDir == "" {
		offlineDir = migrate.DefaultDir
	}

	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(offlineDir, *name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.ValidateDir(offlineDir); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return

	case "hash-password":
		if err := hashPassword(os.Stdin, os.Stdout); err != nil {
			fail("hash-password failed: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"dir":    *dir,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)
	source, err := migrate.Source(*dir)
	requireResource(ctx, logg, "migration source", err)
	runner, err := migrate.NewRunner(sqlDB, cfg.DB.Driver, source, logg)
	requireResource(ctx, logg, "migration runner", err)

	if *cmd != "status" && *cmd != "automigrate" && cfg.DB.IsSQLite() {
		logg.Warn(ctx, "sqlite schema is normally managed with -cmd=automigrate")
	}

	switch *cmd {
	case "automigrate":
		err = migrate.AutoMigrate(dbClient.DB().WithContext(ctx))
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "status":
		var pending int
		if pending, err = runner.Status(ctx); err == nil {
			ctx = logg.WithField(ctx, "pending", pending)
		}
	case "version":
		if *version == "" {
			fail("missing -version for version command")
		}
		err = runner.MigrateTo(ctx, *version)
	default:
		fail("unknown -cmd value %q (expected %s)", *cmd, usage)
	}
	if err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration command completed")
}

// hashPassword reads one line from in and prints the argon2id hash for
// URGENCY_ADMIN_PASSWORD_HASH using the configured costs.
func hashPassword(in io.Reader, out io.Writer) error {
	pwCfg, err := config.LoadPassword()
	if err != nil {
		return err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read password: %w", err)
	}
	hash, err := security.HashPassword(strings.TrimRight(line, "\r\n"), pwCfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
