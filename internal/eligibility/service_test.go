package eligibility

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/certification-management/internal"
	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Mock repository keyed on the (employee, rule) unique constraint.
type mockEligibilityRepo struct {
	records      map[CertKey]*eligdm.EmployeeEligibility
	nextID       int64
	creates      int
	saves        int
	raceOnCreate bool // simulate a concurrent trigger winning the insert
}

func newMockEligibilityRepo() *mockEligibilityRepo {
	return &mockEligibilityRepo{
		records: make(map[CertKey]*eligdm.EmployeeEligibility),
		nextID:  1,
	}
}

func (m *mockEligibilityRepo) GetByEmployee(employeeID int64) ([]eligdm.EmployeeEligibility, error) {
	var out []eligdm.EmployeeEligibility
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out, nil
}

func (m *mockEligibilityRepo) GetLiveByEmployees(employeeIDs []int64) ([]eligdm.EmployeeEligibility, error) {
	ids := make(map[int64]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		ids[id] = true
	}
	var out []eligdm.EmployeeEligibility
	for _, rec := range m.records {
		if ids[rec.EmployeeID] && rec.DeletedAt == nil {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEligibilityRepo) GetByEmployeeAndRule(employeeID, ruleID int64) (*eligdm.EmployeeEligibility, error) {
	if rec, ok := m.records[CertKey{EmployeeID: employeeID, RuleID: ruleID}]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, internal.ErrEligibilityNotFound
}

func (m *mockEligibilityRepo) Create(rec *eligdm.EmployeeEligibility) error {
	key := CertKey{EmployeeID: rec.EmployeeID, RuleID: rec.RuleID}

	if m.raceOnCreate {
		// another reconcile inserted the row between our read and write
		m.raceOnCreate = false
		winner := *rec
		winner.ID = m.nextID
		m.nextID++
		m.records[key] = &winner
		return internal.ErrDuplicateEligibility
	}

	if _, exists := m.records[key]; exists {
		return internal.ErrDuplicateEligibility
	}

	rec.ID = m.nextID
	m.nextID++
	cp := *rec
	m.records[key] = &cp
	m.creates++
	return nil
}

func (m *mockEligibilityRepo) Save(rec *eligdm.EmployeeEligibility) error {
	key := CertKey{EmployeeID: rec.EmployeeID, RuleID: rec.RuleID}
	cp := *rec
	m.records[key] = &cp
	m.saves++
	return nil
}

func (m *mockEligibilityRepo) ListByStatus(status string, limit, offset int) ([]eligdm.EmployeeEligibility, error) {
	var out []eligdm.EmployeeEligibility
	for _, rec := range m.records {
		if rec.DeletedAt == nil && rec.Status == status {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockEligibilityRepo) writes() int {
	return m.creates + m.saves
}

type mockEmployeeReader struct {
	employees map[int64]*employeedm.Employee
	brokenIDs map[int64]bool // IDs whose lookups fail mid-refresh
}

func newMockEmployeeReader(emps ...*employeedm.Employee) *mockEmployeeReader {
	m := &mockEmployeeReader{employees: make(map[int64]*employeedm.Employee)}
	for _, emp := range emps {
		m.employees[emp.ID] = emp
	}
	return m
}

func (m *mockEmployeeReader) GetByID(id int64) (*employeedm.Employee, error) {
	if m.brokenIDs[id] {
		return nil, errors.New("storage unavailable")
	}
	if emp, ok := m.employees[id]; ok {
		return emp, nil
	}
	return nil, internal.ErrEmployeeNotFound
}

func (m *mockEmployeeReader) ListActiveIDs(limit, offset int) ([]int64, error) {
	var ids []int64
	for id, emp := range m.employees {
		if emp.DeletedAt == nil && emp.Status == employeedm.StatusActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end], nil
}

func (m *mockEmployeeReader) ListIDsByJobPosition(jobPositionID int64) ([]int64, error) {
	var ids []int64
	for id, emp := range m.employees {
		if emp.DeletedAt == nil && emp.JobPositionID != nil && *emp.JobPositionID == jobPositionID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type mockRequirementReader struct {
	mappings   []ruledm.JobCertificationMapping
	exceptions []ruledm.EligibilityException
	rules      []ruledm.CertificationRule
}

func (m *mockRequirementReader) ActiveMappingsForJob(jobPositionID int64) ([]ruledm.JobCertificationMapping, error) {
	var out []ruledm.JobCertificationMapping
	for _, mp := range m.mappings {
		if mp.JobPositionID == jobPositionID && mp.IsActive && mp.DeletedAt == nil {
			out = append(out, mp)
		}
	}
	return out, nil
}

func (m *mockRequirementReader) ActiveExceptionsForEmployee(employeeID int64) ([]ruledm.EligibilityException, error) {
	var out []ruledm.EligibilityException
	for _, exc := range m.exceptions {
		if exc.EmployeeID == employeeID && exc.IsActive && exc.DeletedAt == nil {
			out = append(out, exc)
		}
	}
	return out, nil
}

func (m *mockRequirementReader) RulesByIDs(ids []int64) ([]ruledm.CertificationRule, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []ruledm.CertificationRule
	for _, r := range m.rules {
		if wanted[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockCertReader struct {
	certs []certdm.EmployeeCertification
}

func (m *mockCertReader) LiveByEmployees(employeeIDs []int64) ([]certdm.EmployeeCertification, error) {
	ids := make(map[int64]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		ids[id] = true
	}
	var out []certdm.EmployeeCertification
	for _, c := range m.certs {
		if ids[c.EmployeeID] && c.DeletedAt == nil && c.Status != "INVALID" {
			out = append(out, c)
		}
	}
	return out, nil
}

var _ = ginkgo.Describe("EligibilityService", func() {
	var (
		repo     *mockEligibilityRepo
		emps     *mockEmployeeReader
		reqs     *mockRequirementReader
		certs    *mockCertReader
		service  *Service
		today    time.Time
		welder   *employeedm.Employee
		testLog  *slog.Logger
		weldRule ruledm.CertificationRule
	)

	ginkgo.BeforeEach(func() {
		today = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		welder = activeEmployee(10, int64Ptr(5))
		weldRule = ruledm.CertificationRule{
			ID:                1,
			CertificationName: "welding",
			ValidityMonths:    intPtr(12),
			ReminderMonths:    intPtr(1),
			IsActive:          true,
		}

		repo = newMockEligibilityRepo()
		emps = newMockEmployeeReader(welder)
		reqs = &mockRequirementReader{
			mappings: []ruledm.JobCertificationMapping{mapping(5, 1)},
			rules:    []ruledm.CertificationRule{weldRule},
		}
		certs = &mockCertReader{}
		testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

		service = NewService(repo, emps, reqs, certs, testLog, 2, 10).
			WithClock(func() time.Time { return today })
	})

	ginkgo.Describe("Reconcile", func() {
		ginkgo.It("materializes missing requirements", func() {
			writes, err := service.Reconcile(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(writes).To(gomega.Equal(1))

			records, _ := repo.GetByEmployee(10)
			gomega.Expect(records).To(gomega.HaveLen(1))
			gomega.Expect(records[0].Status).To(gomega.Equal(StatusNotYetCertified))
			gomega.Expect(records[0].Source).To(gomega.Equal(SourceByJob))
		})

		ginkgo.It("returns not found for unknown employees", func() {
			_, err := service.Reconcile(999)

			gomega.Expect(internal.IsNotFound(err)).To(gomega.BeTrue())
		})

		ginkgo.It("retires all live records when the employee resigned", func() {
			_, err := service.Reconcile(10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			welder.Status = employeedm.StatusResigned
			writes, err := service.Reconcile(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(writes).To(gomega.Equal(1))

			records, _ := repo.GetByEmployee(10)
			gomega.Expect(records).To(gomega.HaveLen(1))
			gomega.Expect(records[0].DeletedAt).ToNot(gomega.BeNil())
		})

		ginkgo.It("merges instead of failing when a concurrent trigger wins the insert", func() {
			repo.raceOnCreate = true

			_, err := service.Reconcile(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			records, _ := repo.GetByEmployee(10)
			gomega.Expect(records).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Describe("RefreshOne", func() {
		ginkgo.It("is idempotent: the second run writes nothing", func() {
			gomega.Expect(service.RefreshOne(10)).To(gomega.Succeed())
			before := repo.writes()

			gomega.Expect(service.RefreshOne(10)).To(gomega.Succeed())

			gomega.Expect(repo.writes()).To(gomega.Equal(before))
		})

		ginkgo.It("synchronizes status from the latest certification", func() {
			certDate := datePtr(2024, time.January, 15)
			validUntil := datePtr(2025, time.January, 15)
			certs.certs = []certdm.EmployeeCertification{{
				ID:           1,
				EmployeeID:   10,
				RuleID:       1,
				CertNumber:   strPtr("CERT-001"),
				CertDate:     certDate,
				ValidUntil:   validUntil,
				ReminderDate: datePtr(2024, time.December, 15),
				Status:       "ACTIVE",
			}}

			gomega.Expect(service.RefreshOne(10)).To(gomega.Succeed())

			records, _ := repo.GetByEmployee(10)
			gomega.Expect(records).To(gomega.HaveLen(1))
			gomega.Expect(records[0].Status).To(gomega.Equal(StatusActive))
			gomega.Expect(*records[0].CertNumber).To(gomega.Equal("CERT-001"))
			gomega.Expect(*records[0].DueDate).To(gomega.Equal(*validUntil))
		})
	})

	ginkgo.Describe("SynchronizeStatus", func() {
		ginkgo.It("does nothing for an empty batch", func() {
			updated, err := service.SynchronizeStatus(nil)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated).To(gomega.Equal(0))
		})

		ginkgo.It("reports only rows whose stored state changed", func() {
			gomega.Expect(service.RefreshOne(10)).To(gomega.Succeed())

			updated, err := service.SynchronizeStatus([]int64{10})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated).To(gomega.Equal(0))
		})
	})

	ginkgo.Describe("RefreshAll", func() {
		ginkgo.It("walks all active employees in chunks", func() {
			for i := int64(11); i <= 15; i++ {
				emps.employees[i] = activeEmployee(i, int64Ptr(5))
			}

			rows, err := service.RefreshAll()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.Equal(6))

			for i := int64(10); i <= 15; i++ {
				records, _ := repo.GetByEmployee(i)
				gomega.Expect(records).To(gomega.HaveLen(1))
			}
		})

		ginkgo.It("skips resigned employees via the active listing", func() {
			resigned := activeEmployee(11, int64Ptr(5))
			resigned.Status = employeedm.StatusResigned
			emps.employees[11] = resigned

			rows, err := service.RefreshAll()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.Equal(1))

			records, _ := repo.GetByEmployee(11)
			gomega.Expect(records).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("RefreshForJobPosition", func() {
		ginkgo.It("refreshes every employee in the position", func() {
			emps.employees[11] = activeEmployee(11, int64Ptr(5))
			emps.employees[12] = activeEmployee(12, int64Ptr(6)) // other position

			gomega.Expect(service.RefreshForJobPosition(5)).To(gomega.Succeed())

			records, _ := repo.GetByEmployee(11)
			gomega.Expect(records).To(gomega.HaveLen(1))
			records, _ = repo.GetByEmployee(12)
			gomega.Expect(records).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ResolveRequirements", func() {
		ginkgo.It("returns the tagged requirement set", func() {
			reqs.exceptions = []ruledm.EligibilityException{exception(10, 7)}

			required, err := service.ResolveRequirements(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(required).To(gomega.Equal([]RequiredRule{
				{RuleID: 1, Source: SourceByJob},
				{RuleID: 7, Source: SourceByName},
			}))
		})

		ginkgo.It("returns an empty set for offboarded employees", func() {
			welder.Status = employeedm.StatusResigned

			required, err := service.ResolveRequirements(10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(required).To(gomega.BeEmpty())
		})
	})
})

var _ = ginkgo.Describe("RefreshAll partial failures", func() {
	ginkgo.It("skips a failing employee and keeps processing the chunk", func() {
		repo := newMockEligibilityRepo()
		emps := newMockEmployeeReader(
			activeEmployee(10, int64Ptr(5)),
			activeEmployee(11, int64Ptr(5)),
			activeEmployee(12, int64Ptr(5)),
		)
		emps.brokenIDs = map[int64]bool{11: true}
		reqs := &mockRequirementReader{
			mappings: []ruledm.JobCertificationMapping{mapping(5, 1)},
			rules: []ruledm.CertificationRule{{
				ID: 1, CertificationName: "welding", IsActive: true,
			}},
		}
		testLog := slog.New(slog.NewTextHandler(io.Discard, nil))
		service := NewService(repo, emps, reqs, &mockCertReader{}, testLog, 10, 10)

		rows, err := service.RefreshAll()

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rows).To(gomega.Equal(2))

		records, _ := repo.GetByEmployee(10)
		gomega.Expect(records).To(gomega.HaveLen(1))
		records, _ = repo.GetByEmployee(11)
		gomega.Expect(records).To(gomega.BeEmpty())
		records, _ = repo.GetByEmployee(12)
		gomega.Expect(records).To(gomega.HaveLen(1))
	})
})
