package postgres_test

import (
	"testing"
	"time"

	viewPostgres "github.com/frahmantamala/admin-access/internal/view/postgres"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestViewPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "View Postgres Suite")
}

type SQLiteUser struct {
	ID              int64     `gorm:"primaryKey"`
	Username        string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash    string    `gorm:"column:password_hash"`
	PasswordVersion int       `gorm:"column:password_version;default:1"`
	AccessVersion   int       `gorm:"column:access_version;default:1"`
	IsActive        bool      `gorm:"column:is_active;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string { return "users" }

type SQLiteApp struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteApp) TableName() string { return "apps" }

type SQLiteView struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
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

var _ = Describe("View Repository", func() {
	var (
		db   *gorm.DB
		repo *viewPostgres.Repository
	)

	accessVersion := func(userID int64) int {
		var fresh SQLiteUser
		Expect(db.First(&fresh, userID).Error).NotTo(HaveOccurred())
		return fresh.AccessVersion
	}

	newUser := func(username string) SQLiteUser {
		u := SQLiteUser{Username: username, PasswordHash: "x", PasswordVersion: 1, AccessVersion: 1, IsActive: true}
		Expect(db.Create(&u).Error).NotTo(HaveOccurred())
		return u
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteApp{}, &SQLiteView{}, &SQLiteAppUser{}, &SQLiteAppViewUser{})
		Expect(err).NotTo(HaveOccurred())

		repo = viewPostgres.NewRepository(db)
	})

	Describe("SetForUser", func() {
		It("attaches views and bumps access_version on change only", func() {
			user := newUser("alice")
			dashboard, err := repo.Create("dashboard")
			Expect(err).NotTo(HaveOccurred())

			granted, err := repo.SetForUser(user.ID, []int64{dashboard.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(granted).To(HaveLen(1))
			Expect(accessVersion(user.ID)).To(Equal(2))

			_, err = repo.SetForUser(user.ID, []int64{dashboard.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(accessVersion(user.ID)).To(Equal(2))
		})
	})

	Describe("SetForApp", func() {
		It("bumps access_version for every user holding the app", func() {
			alice := newUser("alice")
			bob := newUser("bob")
			carol := newUser("carol")

			app := SQLiteApp{Name: "billing", IsActive: true}
			Expect(db.Create(&app).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteAppUser{UserID: alice.ID, AppID: app.ID}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteAppUser{UserID: bob.ID, AppID: app.ID}).Error).NotTo(HaveOccurred())

			invoices, err := repo.Create("invoices")
			Expect(err).NotTo(HaveOccurred())

			granted, err := repo.SetForApp(app.ID, []int64{invoices.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(granted).To(HaveLen(1))

			Expect(accessVersion(alice.ID)).To(Equal(2))
			Expect(accessVersion(bob.ID)).To(Equal(2))
			// carol has no grant on the app, her tokens stay valid
			Expect(accessVersion(carol.ID)).To(Equal(1))
		})

		It("keeps user and app attachments independent", func() {
			alice := newUser("alice")
			app := SQLiteApp{Name: "billing", IsActive: true}
			Expect(db.Create(&app).Error).NotTo(HaveOccurred())

			dashboard, _ := repo.Create("dashboard")
			invoices, _ := repo.Create("invoices")

			_, err := repo.SetForUser(alice.ID, []int64{dashboard.ID})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SetForApp(app.ID, []int64{invoices.ID})
			Expect(err).NotTo(HaveOccurred())

			userViews, err := repo.GrantedToUser(alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(userViews).To(HaveLen(1))
			Expect(userViews[0].Name).To(Equal("dashboard"))

			appViews, err := repo.GrantedToApp(app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(appViews).To(HaveLen(1))
			Expect(appViews[0].Name).To(Equal("invoices"))
		})
	})

	Describe("AvailableForApp", func() {
		It("excludes attached and inactive views", func() {
			app := SQLiteApp{Name: "billing", IsActive: true}
			Expect(db.Create(&app).Error).NotTo(HaveOccurred())

			invoices, _ := repo.Create("invoices")
			_, err := repo.Create("refunds")
			Expect(err).NotTo(HaveOccurred())
			legacy, _ := repo.Create("legacy")
			_, err = repo.SetActive(legacy.ID, false)
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.SetForApp(app.ID, []int64{invoices.ID})
			Expect(err).NotTo(HaveOccurred())

			available, err := repo.AvailableForApp(app.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).To(HaveLen(1))
			Expect(available[0].Name).To(Equal("refunds"))
		})
	})
})
