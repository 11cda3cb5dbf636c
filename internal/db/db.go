package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"outreach-tracker/internal/activity"
	"outreach-tracker/internal/alert"
	"outreach-tracker/internal/audit"
	"outreach-tracker/internal/config"
	"outreach-tracker/internal/goalplan"
	"outreach-tracker/internal/person"
	"outreach-tracker/internal/role"
	"outreach-tracker/internal/user"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}

// Migrate runs all schema migrations and seeds the default role ladder.
// Split out from Init so tests can run it against their own connection.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(&person.Person{}, &person.Outreach{}, &person.CoachLimit{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(&role.Role{}, &role.TemplateVersion{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(&goalplan.GoalPlan{}, &goalplan.Milestone{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(&activity.ActivityLog{}, &alert.AlertLog{}, &audit.AuditLog{}); err != nil {
		return err
	}
	return role.SeedDefaults(db)
}
