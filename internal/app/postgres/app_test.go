package postgres_test

import (
	"testing"
	"time"

	appPostgres "github.com/frahmantamala/admin-access/internal/app/postgres"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAppPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "App Postgres Suite")
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

type SQLiteAppUser struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"column:user_id;not null"`
	AppID  int64 `gorm:"column:app_id;not null"`
}

func (SQLiteAppUser) TableName() string { return "app_users" }

var _ = Describe("App Repository", func() {
	var (
		db   *gorm.DB
		repo *appPostgres.Repository
		user SQLiteUser
	)

	accessVersion := func(userID int64) int {
		var fresh SQLiteUser
		Expect(db.First(&fresh, userID).Error).NotTo(HaveOccurred())
		return fresh.AccessVersion
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteApp{}, &SQLiteAppUser{})
		Expect(err).NotTo(HaveOccurred())

		repo = appPostgres.NewRepository(db)

		user = SQLiteUser{Username: "alice", PasswordHash: "x", PasswordVersion: 1, AccessVersion: 1, IsActive: true}
		Expect(db.Create(&user).Error).NotTo(HaveOccurred())
	})

	Describe("SetForUser", func() {
		It("grants the desired apps and bumps access_version", func() {
			billing, err := repo.Create("billing")
			Expect(err).NotTo(HaveOccurred())
			reports, err := repo.Create("reports")
			Expect(err).NotTo(HaveOccurred())

			granted, err := repo.SetForUser(user.ID, []int64{billing.ID, reports.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(granted).To(HaveLen(2))
			Expect(accessVersion(user.ID)).To(Equal(2))
		})

		It("does not bump access_version when nothing changed", func() {
			billing, _ := repo.Create("billing")

			_, err := repo.SetForUser(user.ID, []int64{billing.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(accessVersion(user.ID)).To(Equal(2))

			_, err = repo.SetForUser(user.ID, []int64{billing.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(accessVersion(user.ID)).To(Equal(2))
		})

		It("bumps on removal too", func() {
			billing, _ := repo.Create("billing")
			_, err := repo.SetForUser(user.ID, []int64{billing.ID})
			Expect(err).NotTo(HaveOccurred())

			granted, err := repo.SetForUser(user.ID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(granted).To(BeEmpty())
			Expect(accessVersion(user.ID)).To(Equal(3))
		})

		It("returns grants in grant order", func() {
			reports, _ := repo.Create("reports")
			billing, _ := repo.Create("billing")

			_, err := repo.SetForUser(user.ID, []int64{reports.ID})
			Expect(err).NotTo(HaveOccurred())
			granted, err := repo.SetForUser(user.ID, []int64{reports.ID, billing.ID})
			Expect(err).NotTo(HaveOccurred())

			Expect(granted[0].Name).To(Equal("reports"))
			Expect(granted[1].Name).To(Equal("billing"))
		})
	})

	Describe("AvailableForUser", func() {
		It("excludes granted and inactive apps", func() {
			billing, _ := repo.Create("billing")
			_, err := repo.Create("reports")
			Expect(err).NotTo(HaveOccurred())
			archive, _ := repo.Create("archive")
			_, err = repo.SetActive(archive.ID, false)
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.SetForUser(user.ID, []int64{billing.ID})
			Expect(err).NotTo(HaveOccurred())

			available, err := repo.AvailableForUser(user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).To(HaveLen(1))
			Expect(available[0].Name).To(Equal("reports"))
		})
	})
})
