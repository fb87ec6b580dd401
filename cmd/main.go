package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go-reservation-store/cmd/bootstrap"
	"go-reservation-store/config"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

const usage = `Usage: reservationctl [--config FILE] <command> [args]

Commands:
  migrate-up       apply pending schema migrations
  migrate-down     revert all schema migrations, dropping every table
  migrate-version  print the current schema version
  seed-roles       create the default roles if missing
  purge-tokens     delete expired revoked tokens once
  issue-token ID   sign an access token for the active user ID
  worker           run the periodic token purge worker
`

func main() {
	configPath := flag.StringP("config", "c", ".env", "path to the env config file")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	wantArgs := 1
	if flag.Arg(0) == "issue-token" {
		wantArgs = 2
	}
	if flag.NArg() != wantArgs {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	ctx := context.Background()
	command := flag.Arg(0)

	switch command {
	case "migrate-up", "migrate-down", "migrate-version":
		if err := runMigration(cfg, command); err != nil {
			logrus.Fatalf("Migration failed: %v", err)
		}
		return
	case "seed-roles", "purge-tokens", "issue-token", "worker":
	default:
		flag.Usage()
		os.Exit(2)
	}

	// Initialize application with all dependencies
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	switch command {
	case "seed-roles":
		defer app.Close()
		roles, err := app.Roles.EnsureDefaultRoles(ctx)
		if err != nil {
			logrus.Fatalf("Failed to seed roles: %v", err)
		}
		for _, role := range roles {
			fmt.Printf("%d\t%s\n", role.ID, role.Name)
		}
	case "purge-tokens":
		defer app.Close()
		purged, err := app.Tokens.PurgeExpiredTokens(ctx)
		if err != nil {
			logrus.Fatalf("Failed to purge tokens: %v", err)
		}
		logrus.Infof("Purged %d expired revoked tokens", purged)
	case "issue-token":
		defer app.Close()
		userID, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			logrus.Fatalf("Invalid user id %q", flag.Arg(1))
		}
		issued, err := app.Tokens.IssueAccessToken(ctx, userID)
		if err != nil {
			logrus.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Printf("%s\t%s\t%s\n", issued.JTI, issued.ExpiresAt.UTC().Format(time.RFC3339), issued.Token)
	case "worker":
		app.RunWorker()
	}
}

func runMigration(cfg *config.Config, command string) error {
	migrator, err := bootstrap.NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch command {
	case "migrate-up":
		return migrator.Upgrade()
	case "migrate-down":
		return migrator.Downgrade()
	}

	version, err := migrator.Version()
	if err != nil {
		return err
	}
	if !version.Applied {
		fmt.Println("no migrations applied")
		return nil
	}
	fmt.Printf("version %d (dirty=%t)\n", version.Version, version.Dirty)
	return nil
}
