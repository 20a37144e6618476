package postgres_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/certification-management/internal"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	"github.com/frahmantamala/certification-management/internal/eligibility"
	eligPostgres "github.com/frahmantamala/certification-management/internal/eligibility/postgres"
	"github.com/frahmantamala/certification-management/internal/validity"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEligibilityPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Eligibility Postgres Suite")
}

// SQLiteEligibility is a SQLite-compatible model for testing
type SQLiteEligibility struct {
	ID             int64      `gorm:"primaryKey"`
	EmployeeID     int64      `gorm:"column:employee_id;uniqueIndex:idx_emp_rule;not null"`
	RuleID         int64      `gorm:"column:rule_id;uniqueIndex:idx_emp_rule;not null"`
	Source         string     `gorm:"column:source;not null"`
	Status         string     `gorm:"column:status;default:NOT_YET_CERTIFIED"`
	DueDate        *time.Time `gorm:"column:due_date"`
	CertNumber     *string    `gorm:"column:cert_number"`
	CertDate       *time.Time `gorm:"column:cert_date"`
	ValidityMonths *int       `gorm:"column:validity_months"`
	ReminderMonths *int       `gorm:"column:reminder_months"`
	GraceMonths    *int       `gorm:"column:grace_months"`
	JobPositionID  *int64     `gorm:"column:job_position_id"`
	IsActive       bool       `gorm:"column:is_active;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at"`
}

func (SQLiteEligibility) TableName() string {
	return "employee_eligibilities"
}

var _ = Describe("Eligibility PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo eligibility.Repository
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteEligibility{})
		Expect(err).NotTo(HaveOccurred())

		repo = eligPostgres.NewEligibilityRepository(db)
	})

	Describe("Create", func() {
		It("should create a record with defaults", func() {
			rec := &eligdm.EmployeeEligibility{
				EmployeeID: 10,
				RuleID:     1,
				Source:     eligibility.SourceByJob,
				Status:     string(validity.StatusNotYetCertified),
				IsActive:   true,
			}

			err := repo.Create(rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ID).To(BeNumerically(">", 0))
		})

		It("should reject a second live record for the same employee and rule", func() {
			first := &eligdm.EmployeeEligibility{
				EmployeeID: 10,
				RuleID:     1,
				Source:     eligibility.SourceByJob,
				Status:     string(validity.StatusNotYetCertified),
				IsActive:   true,
			}
			Expect(repo.Create(first)).To(Succeed())

			second := &eligdm.EmployeeEligibility{
				EmployeeID: 10,
				RuleID:     1,
				Source:     eligibility.SourceByName,
				Status:     string(validity.StatusNotYetCertified),
				IsActive:   true,
			}

			err := repo.Create(second)
			Expect(err).To(MatchError(internal.ErrDuplicateEligibility))
		})

		It("should allow the same rule for different employees", func() {
			for _, employeeID := range []int64{10, 11} {
				rec := &eligdm.EmployeeEligibility{
					EmployeeID: employeeID,
					RuleID:     1,
					Source:     eligibility.SourceByJob,
					Status:     string(validity.StatusNotYetCertified),
					IsActive:   true,
				}
				Expect(repo.Create(rec)).To(Succeed())
			}
		})
	})

	Describe("GetByEmployee", func() {
		It("should return all records ordered by rule, retired included", func() {
			retiredAt := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
			seed := []*eligdm.EmployeeEligibility{
				{EmployeeID: 10, RuleID: 3, Source: eligibility.SourceByJob, Status: string(validity.StatusActive), IsActive: true},
				{EmployeeID: 10, RuleID: 1, Source: eligibility.SourceByName, Status: string(validity.StatusNotYetCertified), IsActive: false, DeletedAt: &retiredAt},
				{EmployeeID: 99, RuleID: 1, Source: eligibility.SourceByJob, Status: string(validity.StatusActive), IsActive: true},
			}
			for _, rec := range seed {
				Expect(repo.Create(rec)).To(Succeed())
			}

			records, err := repo.GetByEmployee(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].RuleID).To(Equal(int64(1)))
			Expect(records[0].DeletedAt).NotTo(BeNil())
			Expect(records[1].RuleID).To(Equal(int64(3)))
		})
	})

	Describe("GetLiveByEmployees", func() {
		It("should return only live records for the requested employees", func() {
			retiredAt := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
			seed := []*eligdm.EmployeeEligibility{
				{EmployeeID: 10, RuleID: 1, Source: eligibility.SourceByJob, Status: string(validity.StatusActive), IsActive: true},
				{EmployeeID: 10, RuleID: 2, Source: eligibility.SourceByJob, Status: string(validity.StatusNotYetCertified), IsActive: false, DeletedAt: &retiredAt},
				{EmployeeID: 11, RuleID: 1, Source: eligibility.SourceByName, Status: string(validity.StatusActive), IsActive: true},
				{EmployeeID: 99, RuleID: 1, Source: eligibility.SourceByJob, Status: string(validity.StatusActive), IsActive: true},
			}
			for _, rec := range seed {
				Expect(repo.Create(rec)).To(Succeed())
			}

			records, err := repo.GetLiveByEmployees([]int64{10, 11})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].EmployeeID).To(Equal(int64(10)))
			Expect(records[1].EmployeeID).To(Equal(int64(11)))
		})

		It("should return nothing for an empty employee list", func() {
			records, err := repo.GetLiveByEmployees(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})
	})

	Describe("GetByEmployeeAndRule", func() {
		It("should return the record for the pair", func() {
			rec := &eligdm.EmployeeEligibility{
				EmployeeID: 10,
				RuleID:     1,
				Source:     eligibility.SourceByJob,
				Status:     string(validity.StatusActive),
				IsActive:   true,
			}
			Expect(repo.Create(rec)).To(Succeed())

			found, err := repo.GetByEmployeeAndRule(10, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(rec.ID))
		})

		It("should return not found for a missing pair", func() {
			_, err := repo.GetByEmployeeAndRule(10, 999)
			Expect(err).To(MatchError(internal.ErrEligibilityNotFound))
		})
	})

	Describe("Save", func() {
		It("should persist status changes and bump updated_at", func() {
			rec := &eligdm.EmployeeEligibility{
				EmployeeID: 10,
				RuleID:     1,
				Source:     eligibility.SourceByJob,
				Status:     string(validity.StatusNotYetCertified),
				IsActive:   true,
			}
			Expect(repo.Create(rec)).To(Succeed())
			before := rec.UpdatedAt

			due := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
			rec.Status = string(validity.StatusActive)
			rec.DueDate = &due
			Expect(repo.Save(rec)).To(Succeed())

			found, err := repo.GetByEmployeeAndRule(10, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(string(validity.StatusActive)))
			Expect(found.DueDate).NotTo(BeNil())
			Expect(found.UpdatedAt).To(BeTemporally(">=", before))
		})

		It("should persist retirement and reactivation", func() {
			rec := &eligdm.EmployeeEligibility{
				EmployeeID: 10,
				RuleID:     1,
				Source:     eligibility.SourceByJob,
				Status:     string(validity.StatusNotYetCertified),
				IsActive:   true,
			}
			Expect(repo.Create(rec)).To(Succeed())

			rec.Retire(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
			Expect(repo.Save(rec)).To(Succeed())

			live, err := repo.GetLiveByEmployees([]int64{10})
			Expect(err).NotTo(HaveOccurred())
			Expect(live).To(BeEmpty())

			rec.Reactivate()
			Expect(repo.Save(rec)).To(Succeed())

			live, err = repo.GetLiveByEmployees([]int64{10})
			Expect(err).NotTo(HaveOccurred())
			Expect(live).To(HaveLen(1))
		})
	})

	Describe("ListByStatus", func() {
		It("should return live records with the status ordered by due date", func() {
			retiredAt := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
			dueSoon := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
			dueLater := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
			seed := []*eligdm.EmployeeEligibility{
				{EmployeeID: 10, RuleID: 1, Source: eligibility.SourceByJob, Status: string(validity.StatusDue), DueDate: &dueLater, IsActive: true},
				{EmployeeID: 11, RuleID: 1, Source: eligibility.SourceByJob, Status: string(validity.StatusDue), DueDate: &dueSoon, IsActive: true},
				{EmployeeID: 12, RuleID: 1, Source: eligibility.SourceByJob, Status: string(validity.StatusActive), IsActive: true},
				{EmployeeID: 13, RuleID: 1, Source: eligibility.SourceByJob, Status: string(validity.StatusDue), DueDate: &dueSoon, IsActive: false, DeletedAt: &retiredAt},
			}
			for _, rec := range seed {
				Expect(repo.Create(rec)).To(Succeed())
			}

			records, err := repo.ListByStatus(string(validity.StatusDue), 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].EmployeeID).To(Equal(int64(11)))
			Expect(records[1].EmployeeID).To(Equal(int64(10)))
		})

		It("should honor limit and offset", func() {
			due := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
			for i := int64(1); i <= 3; i++ {
				rec := &eligdm.EmployeeEligibility{
					EmployeeID: i,
					RuleID:     1,
					Source:     eligibility.SourceByJob,
					Status:     string(validity.StatusDue),
					DueDate:    &due,
					IsActive:   true,
				}
				Expect(repo.Create(rec)).To(Succeed())
			}

			records, err := repo.ListByStatus(string(validity.StatusDue), 2, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
		})
	})
})
