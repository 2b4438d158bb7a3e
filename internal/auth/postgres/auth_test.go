package postgres_test

import (
	"testing"
	"time"

	authPostgres "github.com/frahmantamala/admin-access/internal/auth/postgres"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuthPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Postgres Suite")
}

type SQLiteUser struct {
	ID              int64     `gorm:"primaryKey"`
	Username        string    `gorm:"column:username;uniqueIndex;not null"`
	FirstName       string    `gorm:"column:first_name"`
	LastName        string    `gorm:"column:last_name"`
	Email           *string   `gorm:"column:email;uniqueIndex"`
	Phone           *string   `gorm:"column:phone;uniqueIndex"`
	PasswordHash    string    `gorm:"column:password_hash"`
	PasswordTemp    *string   `gorm:"column:password_temp"`
	PasswordVersion int       `gorm:"column:password_version;default:1"`
	AccessVersion   int       `gorm:"column:access_version;default:1"`
	IsActive        bool      `gorm:"column:is_active;default:true"`
	UserGroupID     *int64    `gorm:"column:user_group_id"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string { return "users" }

type SQLiteUserGroup struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"column:name;uniqueIndex;not null"`
	IsActive bool   `gorm:"column:is_active;default:true"`
}

func (SQLiteUserGroup) TableName() string { return "user_groups" }

type SQLitePermission struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"column:name;not null"`
	IsActive bool   `gorm:"column:is_active"`
}

func (SQLitePermission) TableName() string { return "permissions" }

type SQLiteFunction struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"column:name;uniqueIndex;not null"`
	IsAssigned bool   `gorm:"column:is_assigned;default:false"`
}

func (SQLiteFunction) TableName() string { return "functions" }

type SQLitePermissionFunction struct {
	ID           int64 `gorm:"primaryKey"`
	PermissionID int64 `gorm:"column:permission_id;not null"`
	FunctionID   int64 `gorm:"column:function_id;not null"`
}

func (SQLitePermissionFunction) TableName() string { return "permission_functions" }

type SQLiteUserPermissionGroup struct {
	ID           int64  `gorm:"primaryKey"`
	UserID       *int64 `gorm:"column:user_id"`
	GroupID      *int64 `gorm:"column:group_id"`
	PermissionID int64  `gorm:"column:permission_id;not null"`
}

func (SQLiteUserPermissionGroup) TableName() string { return "user_permission_groups" }

type SQLiteApp struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"column:name;uniqueIndex;not null"`
	IsActive bool   `gorm:"column:is_active"`
}

func (SQLiteApp) TableName() string { return "apps" }

type SQLiteView struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"column:name;uniqueIndex;not null"`
	IsActive bool   `gorm:"column:is_active"`
}

func (SQLiteView) TableName() string { return "views" }

type SQLiteAppUser struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"column:user_id;not null"`
	AppID  int64 `gorm:"column:app_id;not null"`
}

func (SQLiteAppUser) TableName() string { return "app_users" }

type SQLiteAppViewUser struct {
	ID     int64  `gorm:"primaryKey"`
	UserID *int64 `gorm:"column:user_id"`
	AppID  *int64 `gorm:"column:app_id"`
	ViewID int64  `gorm:"column:view_id;not null"`
}

func (SQLiteAppViewUser) TableName() string { return "app_view_users" }

var _ = Describe("Auth Repository", func() {
	var (
		db    *gorm.DB
		repo  *authPostgres.Repository
		alice SQLiteUser
	)

	strPtr := func(s string) *string { return &s }

	newPermission := func(name string, active bool) SQLitePermission {
		p := SQLitePermission{Name: name, IsActive: active}
		Expect(db.Create(&p).Error).NotTo(HaveOccurred())
		return p
	}

	grantToUser := func(userID, permissionID int64) {
		row := SQLiteUserPermissionGroup{UserID: &userID, PermissionID: permissionID}
		Expect(db.Create(&row).Error).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteUserGroup{}, &SQLiteUser{},
			&SQLitePermission{}, &SQLiteFunction{}, &SQLitePermissionFunction{},
			&SQLiteUserPermissionGroup{},
			&SQLiteApp{}, &SQLiteView{}, &SQLiteAppUser{}, &SQLiteAppViewUser{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = authPostgres.NewRepository(db)

		alice = SQLiteUser{
			Username:        "alice",
			FirstName:       "Alice",
			Email:           strPtr("alice@example.com"),
			Phone:           strPtr("5550100"),
			PasswordHash:    "digest",
			PasswordVersion: 1,
			AccessVersion:   1,
			IsActive:        true,
		}
		Expect(db.Create(&alice).Error).NotTo(HaveOccurred())
	})

	Describe("GetUserByIdentifier", func() {
		It("matches username, email and phone alike", func() {
			for _, identifier := range []string{"alice", "alice@example.com", "5550100"} {
				found, err := repo.GetUserByIdentifier(identifier)
				Expect(err).NotTo(HaveOccurred())
				Expect(found).NotTo(BeNil())
				Expect(found.ID).To(Equal(alice.ID))
			}
		})

		It("returns no user and no error for an unknown identifier", func() {
			found, err := repo.GetUserByIdentifier("nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("GetUserByID", func() {
		It("returns no user and no error when the id does not exist", func() {
			found, err := repo.GetUserByID(9999)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("ActiveAppsForUser", func() {
		It("orders apps by grant creation, not by app id", func() {
			billing := SQLiteApp{Name: "billing", IsActive: true}
			reports := SQLiteApp{Name: "reports", IsActive: true}
			Expect(db.Create(&billing).Error).NotTo(HaveOccurred())
			Expect(db.Create(&reports).Error).NotTo(HaveOccurred())

			// reports granted first, so it comes out first
			Expect(db.Create(&SQLiteAppUser{UserID: alice.ID, AppID: reports.ID}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteAppUser{UserID: alice.ID, AppID: billing.ID}).Error).NotTo(HaveOccurred())

			apps, err := repo.ActiveAppsForUser(alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(apps).To(HaveLen(2))
			Expect(apps[0].Name).To(Equal("reports"))
			Expect(apps[1].Name).To(Equal("billing"))
		})

		It("skips deactivated apps", func() {
			archive := SQLiteApp{Name: "archive", IsActive: false}
			Expect(db.Create(&archive).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteAppUser{UserID: alice.ID, AppID: archive.ID}).Error).NotTo(HaveOccurred())

			apps, err := repo.ActiveAppsForUser(alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(apps).To(BeEmpty())
		})
	})

	Describe("view name lookups", func() {
		var (
			app       SQLiteApp
			dashboard SQLiteView
			invoices  SQLiteView
			legacy    SQLiteView
		)

		BeforeEach(func() {
			app = SQLiteApp{Name: "billing", IsActive: true}
			Expect(db.Create(&app).Error).NotTo(HaveOccurred())

			dashboard = SQLiteView{Name: "dashboard", IsActive: true}
			invoices = SQLiteView{Name: "invoices", IsActive: true}
			legacy = SQLiteView{Name: "legacy", IsActive: false}
			Expect(db.Create(&dashboard).Error).NotTo(HaveOccurred())
			Expect(db.Create(&invoices).Error).NotTo(HaveOccurred())
			Expect(db.Create(&legacy).Error).NotTo(HaveOccurred())
		})

		It("returns user-attached active views in attachment order", func() {
			Expect(db.Create(&SQLiteAppViewUser{UserID: &alice.ID, ViewID: invoices.ID}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteAppViewUser{UserID: &alice.ID, ViewID: dashboard.ID}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteAppViewUser{UserID: &alice.ID, ViewID: legacy.ID}).Error).NotTo(HaveOccurred())

			names, err := repo.ActiveViewNamesForUser(alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"invoices", "dashboard"}))
		})

		It("keeps app-attached views separate from user-attached ones", func() {
			Expect(db.Create(&SQLiteAppViewUser{AppID: &app.ID, ViewID: invoices.ID}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteAppViewUser{UserID: &alice.ID, ViewID: dashboard.ID}).Error).NotTo(HaveOccurred())

			appNames, err := repo.ActiveViewNamesForApp(app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(appNames).To(Equal([]string{"invoices"}))

			userNames, err := repo.ActiveViewNamesForUser(alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(userNames).To(Equal([]string{"dashboard"}))
		})
	})

	Describe("PermissionForFunction", func() {
		It("returns nil for an unmapped function", func() {
			fn := SQLiteFunction{Name: "orphan"}
			Expect(db.Create(&fn).Error).NotTo(HaveOccurred())

			perm, err := repo.PermissionForFunction(fn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(perm).To(BeNil())
		})

		It("carries the inactive flag of the linked permission", func() {
			perm := newPermission("manage_users", false)
			fn := SQLiteFunction{Name: "users_read", IsAssigned: true}
			Expect(db.Create(&fn).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLitePermissionFunction{PermissionID: perm.ID, FunctionID: fn.ID}).Error).NotTo(HaveOccurred())

			found, err := repo.PermissionForFunction(fn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.Name).To(Equal("manage_users"))
			Expect(found.IsActive).To(BeFalse())
		})
	})

	Describe("grant lookups", func() {
		It("matches a direct user grant by permission name", func() {
			perm := newPermission("manage_users", true)
			grantToUser(alice.ID, perm.ID)

			ok, err := repo.UserHasPermissionNamed(alice.ID, "manage_users")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = repo.UserHasPermissionNamed(alice.ID, "manage_apps")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("matches a group grant by permission name", func() {
			group := SQLiteUserGroup{Name: "admins", IsActive: true}
			Expect(db.Create(&group).Error).NotTo(HaveOccurred())

			perm := newPermission("manage_users", true)
			row := SQLiteUserPermissionGroup{GroupID: &group.ID, PermissionID: perm.ID}
			Expect(db.Create(&row).Error).NotTo(HaveOccurred())

			ok, err := repo.GroupHasPermissionNamed(group.ID, "manage_users")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			// the grant belongs to the group, not to its members directly
			ok, err = repo.UserHasPermissionNamed(alice.ID, "manage_users")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("matches by name even when the grant points at a different row with the same name", func() {
			linked := newPermission("manage_users", true)
			duplicate := newPermission("manage_users", true)
			Expect(duplicate.ID).NotTo(Equal(linked.ID))

			fn := SQLiteFunction{Name: "users_read", IsAssigned: true}
			Expect(db.Create(&fn).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLitePermissionFunction{PermissionID: linked.ID, FunctionID: fn.ID}).Error).NotTo(HaveOccurred())

			grantToUser(alice.ID, duplicate.ID)

			ok, err := repo.UserHasPermissionNamed(alice.ID, "manage_users")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("UpdatePassword", func() {
		It("replaces the hash, clears the temp digest and bumps the version together", func() {
			temp := "temp-digest"
			Expect(db.Model(&SQLiteUser{}).Where("id = ?", alice.ID).
				Update("password_temp", temp).Error).NotTo(HaveOccurred())

			Expect(repo.UpdatePassword(alice.ID, "new-digest")).To(Succeed())

			var fresh SQLiteUser
			Expect(db.First(&fresh, alice.ID).Error).NotTo(HaveOccurred())
			Expect(fresh.PasswordHash).To(Equal("new-digest"))
			Expect(fresh.PasswordTemp).To(BeNil())
			Expect(fresh.PasswordVersion).To(Equal(2))
		})

		It("reports a missing user", func() {
			err := repo.UpdatePassword(9999, "new-digest")
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})
	})
})
