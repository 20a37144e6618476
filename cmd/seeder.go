package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/certification-management/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			clearSeedData(db)
		}

		seedUsers(db)
		seedJobPositions(db)
		seedRules(db)
	},
}

func clearSeedData(db *gorm.DB) {
	tables := []string{
		"employee_eligibilities",
		"employee_certifications",
		"eligibility_exceptions",
		"job_certification_mappings",
		"certification_rules",
		"employees",
		"job_positions",
		"user_permissions",
		"permissions",
		"users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear table %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedUsers(db *gorm.DB) {
	password := "password"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	adminEmail := "admin@mail.com"
	ensureUser(db, adminEmail, "Admin", string(hash))

	operatorEmail := "hr@mail.com"
	ensureUser(db, operatorEmail, "HR Operator", string(hash))

	permissions := []struct {
		Name string
		Desc string
	}{
		{auth.PermAdmin, "full administrator"},
		{auth.PermManageEmployees, "Can manage employee records"},
		{auth.PermManageRules, "Can manage certification rules, mappings and exceptions"},
		{auth.PermRecordCertifications, "Can record and update certifications"},
		{auth.PermRefreshEligibility, "Can trigger eligibility refreshes"},
	}

	for _, p := range permissions {
		var pid int64
		row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
		if err := row.Scan(&pid); err != nil {
			if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
				log.Fatalf("failed to insert permission %s: %v", p.Name, err)
			}
		}
	}

	grantPermissions(db, adminEmail, []string{auth.PermAdmin})
	grantPermissions(db, operatorEmail, []string{auth.PermManageEmployees, auth.PermRecordCertifications})

	fmt.Println("Seeded users and permissions")
}

func ensureUser(db *gorm.DB, email, name, passwordHash string) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists; will ensure permissions\n", email)
		return
	}

	if err := db.Exec("INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", email, name, passwordHash).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}

func grantPermissions(db *gorm.DB, email string, permNames []string) {
	var userID int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&userID); err != nil {
		log.Fatalf("failed to lookup user id for %s: %v", email, err)
	}

	for _, permName := range permNames {
		var pid int64
		if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&pid); err != nil {
			log.Fatalf("permission not found %s: %v", permName, err)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, pid).Row().Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, created_at) VALUES (?, ?, now())", userID, pid).Error; err != nil {
			log.Fatalf("failed to grant permission %s to %s: %v", permName, email, err)
		}
	}
}

func seedJobPositions(db *gorm.DB) {
	positions := []struct {
		Code string
		Name string
	}{
		{"WLD", "Welder"},
		{"CRN", "Crane Operator"},
		{"ELC", "Electrician"},
		{"SFT", "Safety Officer"},
	}

	for _, p := range positions {
		var exists int
		row := db.Raw("SELECT 1 FROM job_positions WHERE code = ?", p.Code).Row()
		if err := row.Scan(&exists); err != nil {
			if err := db.Exec("INSERT INTO job_positions (code, name, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())", p.Code, p.Name).Error; err != nil {
				log.Fatalf("failed to insert job position %s: %v", p.Code, err)
			}
			fmt.Printf("Seeded job position: %s\n", p.Name)
		}
	}
}

func seedRules(db *gorm.DB) {
	rules := []struct {
		Name           string
		Level          *string
		ValidityMonths *int
		ReminderMonths *int
	}{
		{"welding_certification", strPtr("class_1"), intPtr(24), intPtr(2)},
		{"crane_operator_license", nil, intPtr(60), intPtr(3)},
		{"electrical_safety", nil, intPtr(12), intPtr(1)},
		{"first_aid", nil, nil, nil},
	}

	for _, r := range rules {
		var exists int
		row := db.Raw("SELECT 1 FROM certification_rules WHERE certification_name = ?", r.Name).Row()
		if err := row.Scan(&exists); err != nil {
			if err := db.Exec("INSERT INTO certification_rules (certification_name, level, validity_months, reminder_months, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())", r.Name, r.Level, r.ValidityMonths, r.ReminderMonths).Error; err != nil {
				log.Fatalf("failed to insert rule %s: %v", r.Name, err)
			}
			fmt.Printf("Seeded certification rule: %s\n", r.Name)
		}
	}

	mappings := []struct {
		Position string
		Rule     string
	}{
		{"WLD", "welding_certification"},
		{"WLD", "first_aid"},
		{"CRN", "crane_operator_license"},
		{"ELC", "electrical_safety"},
		{"SFT", "first_aid"},
	}

	for _, m := range mappings {
		var jobID, ruleID int64
		if err := db.Raw("SELECT id FROM job_positions WHERE code = ?", m.Position).Row().Scan(&jobID); err != nil {
			log.Fatalf("job position not found %s: %v", m.Position, err)
		}
		if err := db.Raw("SELECT id FROM certification_rules WHERE certification_name = ?", m.Rule).Row().Scan(&ruleID); err != nil {
			log.Fatalf("rule not found %s: %v", m.Rule, err)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM job_certification_mappings WHERE job_position_id = ? AND rule_id = ?", jobID, ruleID).Row().Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec("INSERT INTO job_certification_mappings (job_position_id, rule_id, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())", jobID, ruleID).Error; err != nil {
			log.Fatalf("failed to insert mapping %s -> %s: %v", m.Position, m.Rule, err)
		}
	}

	fmt.Println("Certification rules and job mappings seeded successfully")
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
