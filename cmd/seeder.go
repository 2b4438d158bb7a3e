package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// seedFunctions mirrors the function ids the route table is registered with.
var seedFunctions = []struct {
	ID   int64
	Name string
}{
	{1, "users_read"},
	{2, "users_write"},
	{3, "user_groups_read"},
	{4, "user_groups_write"},
	{5, "permissions_read"},
	{6, "permissions_write"},
	{7, "apps_read"},
	{8, "apps_write"},
	{9, "views_read"},
	{10, "views_write"},
	{11, "functions_read"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a bootstrap administrator",
	Long:  `Install the admin group, the admin permission over every registered function and an initial administrator account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"app_view_users", "app_users", "user_permission_groups",
				"permission_functions", "functions", "permissions",
				"users", "user_groups", "apps", "views",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		var groupID int64
		row := db.Raw("SELECT id FROM user_groups WHERE name = ?", "administrators").Row()
		if err := row.Scan(&groupID); err != nil {
			err := db.Raw(
				"INSERT INTO user_groups (name, is_active, created_at, updated_at) VALUES (?, true, now(), now()) RETURNING id",
				"administrators").Row().Scan(&groupID)
			if err != nil {
				log.Fatalf("failed to insert administrators group: %v", err)
			}
			fmt.Println("Seeded administrators group")
		}

		for _, fn := range seedFunctions {
			var exists int
			row := db.Raw("SELECT 1 FROM functions WHERE id = ?", fn.ID).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			err := db.Exec(
				"INSERT INTO functions (id, name, is_assigned, created_at) VALUES (?, ?, true, now())",
				fn.ID, fn.Name).Error
			if err != nil {
				log.Fatalf("failed to insert function %s: %v", fn.Name, err)
			}
		}
		if err := db.Exec("SELECT setval('functions_id_seq', (SELECT MAX(id) FROM functions))").Error; err != nil {
			log.Fatalf("failed to advance functions sequence: %v", err)
		}

		var permID int64
		row = db.Raw("SELECT id FROM permissions WHERE name = ?", "admin").Row()
		if err := row.Scan(&permID); err != nil {
			err := db.Raw(
				"INSERT INTO permissions (name, is_active, created_at, updated_at) VALUES (?, true, now(), now()) RETURNING id",
				"admin").Row().Scan(&permID)
			if err != nil {
				log.Fatalf("failed to insert admin permission: %v", err)
			}
			fmt.Println("Seeded admin permission")
		}

		for _, fn := range seedFunctions {
			var exists int
			row := db.Raw(
				"SELECT 1 FROM permission_functions WHERE permission_id = ? AND function_id = ?",
				permID, fn.ID).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			err := db.Exec(
				"INSERT INTO permission_functions (permission_id, function_id) VALUES (?, ?)",
				permID, fn.ID).Error
			if err != nil {
				log.Fatalf("failed to link function %s: %v", fn.Name, err)
			}
		}

		var exists int
		row = db.Raw(
			"SELECT 1 FROM user_permission_groups WHERE group_id = ? AND permission_id = ?",
			groupID, permID).Row()
		if err := row.Scan(&exists); err != nil {
			err := db.Exec(
				"INSERT INTO user_permission_groups (group_id, permission_id) VALUES (?, ?)",
				groupID, permID).Error
			if err != nil {
				log.Fatalf("failed to grant admin permission to group: %v", err)
			}
		}

		adminUsername := "admin"
		row = db.Raw("SELECT 1 FROM users WHERE username = ?", adminUsername).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists")
			return
		}

		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if password == "" {
			password = "admin12345"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		// password_temp mirrors the hash so first sign-in forces a change
		err = db.Exec(
			`INSERT INTO users (username, first_name, last_name, password_hash, password_temp,
				password_version, access_version, is_active, user_group_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, 1, true, ?, now(), now())`,
			adminUsername, "Admin", "User", string(hash), string(hash), groupID).Error
		if err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}
		fmt.Println("Seeded admin user:", adminUsername)
	},
}
