package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"outreach-tracker/internal/alert"
	"outreach-tracker/internal/api"
	"outreach-tracker/internal/config"
	"outreach-tracker/internal/db"
	redisdb "outreach-tracker/internal/redis"
	"outreach-tracker/internal/trajectory"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	roles, err := trajectory.LoadRoleConfig(cfg.Tracker.RoleMilestonesPath, cfg.Tracker.RoleNextPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Role config error: %v\n", err)
		os.Exit(1)
	}

	var transport alert.Transport
	if smtp := alert.NewSMTPTransport(cfg); smtp != nil {
		transport = smtp
	} else {
		log.Printf("[Main] SMTP not configured; at-risk alerts will be stored instead of sent")
	}

	// Periodic at-risk alert job, if scheduled
	if cfg.Tracker.AlertScheduleHours > 0 {
		interval := time.Duration(cfg.Tracker.AlertScheduleHours) * time.Hour
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				result, err := trajectory.RunAlertsJob(db.DB, transport, false)
				if err != nil {
					log.Printf("[Main] Alert job error: %v", err)
					continue
				}
				log.Printf("[Main] Alert job finished: %s (%d groups)", result.Status, result.Count)
			}
		}()
		log.Printf("[Main] Alert job scheduled every %d hours", cfg.Tracker.AlertScheduleHours)
	} else {
		log.Printf("[Main] Alert job schedule disabled in config")
	}

	r := api.SetupRouter(cfg, rdb, roles, transport)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
