// One-off batch backfill: accounts created before the profile tables existed
// get their missing profile and developer-profile rows. Safe to re-run; rows
// that already exist are skipped.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mfreitas/devmarket/internal/config"
	"github.com/mfreitas/devmarket/internal/db"
	"github.com/mfreitas/devmarket/internal/repository/sqlite"
	"github.com/mfreitas/devmarket/pkg/models"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	repo := sqlite.New(database, nil)

	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List accounts error: %v\n", err)
		os.Exit(1)
	}

	var createdProfiles, createdDevProfiles int
	for _, account := range accounts {
		profile, err := repo.GetProfileByAccountID(ctx, account.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Load profile for account %d: %v\n", account.ID, err)
			os.Exit(1)
		}
		if profile == nil {
			p := models.Profile{AccountID: account.ID, ContactEmail: account.Email}
			if _, err := repo.CreateProfile(ctx, &p); err != nil {
				fmt.Fprintf(os.Stderr, "Create profile for account %d: %v\n", account.ID, err)
				os.Exit(1)
			}
			createdProfiles++
		}

		if account.Role != models.RoleDeveloper {
			continue
		}
		dev, err := repo.GetDeveloperProfileByAccountID(ctx, account.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Load developer profile for account %d: %v\n", account.ID, err)
			os.Exit(1)
		}
		if dev == nil {
			d := models.DeveloperProfile{AccountID: account.ID}
			if _, err := repo.CreateDeveloperProfile(ctx, &d); err != nil {
				fmt.Fprintf(os.Stderr, "Create developer profile for account %d: %v\n", account.ID, err)
				os.Exit(1)
			}
			createdDevProfiles++
		}
	}

	fmt.Printf("Backfill done: %d accounts scanned, %d profiles created, %d developer profiles created.\n",
		len(accounts), createdProfiles, createdDevProfiles)
}
