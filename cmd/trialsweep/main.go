package main

import (
	"context"
	"fmt"
	"linklyst/internal/cache"
	"linklyst/internal/config"
	"linklyst/internal/data"
	"linklyst/internal/logger"
	"linklyst/internal/service"
	"os"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const usage = `Usage: trialsweep <command>

Commands:
  status                  list trial accounts and their windows
  expire                  deactivate every trial whose window has elapsed
  extend <username> [days]  push a user's trial out (default 7 days)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	db, err := data.NewDB(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	users := data.NewUserRepository(db)
	profiles := data.NewProfileRepository(db)
	identity := service.NewIdentityService(users, profiles, cfg.Trial.Days, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "status":
		if err := printStatus(ctx, users); err != nil {
			log.Fatal(err, "Failed to list trial accounts")
		}
	case "expire":
		expired, err := identity.ExpireOverdueTrials(ctx)
		if err != nil {
			log.Fatal(err, "Failed to expire trials")
		}
		if expired > 0 {
			// Drop every cached public profile so expired accounts stop
			// being served before their cache entries age out.
			if payloadCache, err := cache.New(cfg.Cache); err != nil {
				log.Warn(fmt.Sprintf("Could not open cache to invalidate profiles: %v", err))
			} else {
				if err := payloadCache.DeletePrefix(service.ProfileCachePrefix); err != nil {
					log.Warn(fmt.Sprintf("Could not invalidate cached profiles: %v", err))
				}
				payloadCache.Close()
			}
		}
		fmt.Printf("Expired %d trial account(s)\n", expired)
	case "extend":
		if len(os.Args) < 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		days := cfg.Trial.Days
		if len(os.Args) > 3 {
			days, err = strconv.Atoi(os.Args[3])
			if err != nil || days <= 0 {
				fmt.Fprintln(os.Stderr, "days must be a positive number")
				os.Exit(2)
			}
		}
		end, err := identity.ExtendTrial(ctx, os.Args[2], days)
		if err != nil {
			log.Fatal(err, "Failed to extend trial")
		}
		fmt.Printf("Trial for %s now ends %s\n", os.Args[2], end.Format("2006-01-02"))
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func printStatus(ctx context.Context, users *data.UserRepository) error {
	trials, err := users.ListTrialUsers(ctx)
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		fmt.Println("No trial accounts")
		return nil
	}

	now := time.Now()
	for _, u := range trials {
		state := "no end date"
		if u.TrialEnd != nil {
			if now.After(*u.TrialEnd) {
				state = fmt.Sprintf("overdue since %s", u.TrialEnd.Format("2006-01-02"))
			} else {
				state = fmt.Sprintf("ends %s", u.TrialEnd.Format("2006-01-02"))
			}
		}
		fmt.Printf("%-24s %-32s %s\n", u.Username, u.Email, state)
	}
	return nil
}
