package eligibility

import (
	"time"

	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	"github.com/frahmantamala/certification-management/internal/validity"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func cert(id, employeeID, ruleID int64, certDate *time.Time) certdm.EmployeeCertification {
	return certdm.EmployeeCertification{
		ID:         id,
		EmployeeID: employeeID,
		RuleID:     ruleID,
		CertNumber: strPtr("CERT-001"),
		CertDate:   certDate,
		Status:     string(validity.StatusActive),
	}
}

var _ = ginkgo.Describe("LatestByPair", func() {
	ginkgo.It("picks the latest certification date per pair", func() {
		older := cert(1, 10, 1, datePtr(2022, time.March, 1))
		newer := cert(2, 10, 1, datePtr(2024, time.January, 15))

		latest := LatestByPair([]certdm.EmployeeCertification{older, newer})

		gomega.Expect(latest).To(gomega.HaveLen(1))
		gomega.Expect(latest[CertKey{EmployeeID: 10, RuleID: 1}].ID).To(gomega.Equal(int64(2)))
	})

	ginkgo.It("prefers any dated certification over undated ones", func() {
		undated := cert(5, 10, 1, nil)
		dated := cert(3, 10, 1, datePtr(2020, time.January, 1))

		latest := LatestByPair([]certdm.EmployeeCertification{undated, dated})

		gomega.Expect(latest[CertKey{EmployeeID: 10, RuleID: 1}].ID).To(gomega.Equal(int64(3)))
	})

	ginkgo.It("breaks full ties on the higher ID", func() {
		a := cert(1, 10, 1, datePtr(2024, time.January, 15))
		b := cert(2, 10, 1, datePtr(2024, time.January, 15))

		latest := LatestByPair([]certdm.EmployeeCertification{a, b})

		gomega.Expect(latest[CertKey{EmployeeID: 10, RuleID: 1}].ID).To(gomega.Equal(int64(2)))
	})

	ginkgo.It("treats INVALID certifications as absent", func() {
		invalidated := cert(1, 10, 1, datePtr(2024, time.January, 15))
		invalidated.Status = string(validity.StatusInvalid)

		latest := LatestByPair([]certdm.EmployeeCertification{invalidated})

		gomega.Expect(latest).To(gomega.BeEmpty())
	})

	ginkgo.It("treats soft-deleted certifications as absent", func() {
		deleted := cert(1, 10, 1, datePtr(2024, time.January, 15))
		deleted.DeletedAt = datePtr(2024, time.February, 1)

		latest := LatestByPair([]certdm.EmployeeCertification{deleted})

		gomega.Expect(latest).To(gomega.BeEmpty())
	})

	ginkgo.It("keeps pairs independent", func() {
		latest := LatestByPair([]certdm.EmployeeCertification{
			cert(1, 10, 1, datePtr(2024, time.January, 15)),
			cert(2, 10, 2, datePtr(2023, time.June, 1)),
			cert(3, 11, 1, datePtr(2022, time.June, 1)),
		})

		gomega.Expect(latest).To(gomega.HaveLen(3))
	})
})

var _ = ginkgo.Describe("PlanSync", func() {
	var today time.Time

	ginkgo.BeforeEach(func() {
		today = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	})

	ginkgo.It("copies certification facts onto the matching record", func() {
		rec := liveRecord(10, 1, StatusNotYetCertified)
		matched := cert(1, 10, 1, datePtr(2024, time.January, 15))
		matched.ValidUntil = datePtr(2025, time.January, 15)
		matched.ReminderDate = datePtr(2024, time.December, 15)
		latest := map[CertKey]certdm.EmployeeCertification{
			{EmployeeID: 10, RuleID: 1}: matched,
		}

		changed := PlanSync(today, []eligdm.EmployeeEligibility{rec}, latest)

		gomega.Expect(changed).To(gomega.HaveLen(1))
		next := changed[0]
		gomega.Expect(next.Status).To(gomega.Equal(StatusActive))
		gomega.Expect(*next.CertNumber).To(gomega.Equal("CERT-001"))
		gomega.Expect(*next.CertDate).To(gomega.Equal(*matched.CertDate))
		gomega.Expect(*next.DueDate).To(gomega.Equal(*matched.ValidUntil))
	})

	ginkgo.It("clears stale facts when no certification remains", func() {
		rec := liveRecord(10, 1, StatusActive)
		rec.CertNumber = strPtr("CERT-001")
		rec.CertDate = datePtr(2024, time.January, 15)
		rec.DueDate = datePtr(2025, time.January, 15)

		changed := PlanSync(today, []eligdm.EmployeeEligibility{rec}, nil)

		gomega.Expect(changed).To(gomega.HaveLen(1))
		next := changed[0]
		gomega.Expect(next.Status).To(gomega.Equal(StatusNotYetCertified))
		gomega.Expect(next.CertNumber).To(gomega.BeNil())
		gomega.Expect(next.CertDate).To(gomega.BeNil())
		gomega.Expect(next.DueDate).To(gomega.BeNil())
	})

	ginkgo.It("returns nothing when the stored state already matches", func() {
		rec := liveRecord(10, 1, StatusNotYetCertified)

		changed := PlanSync(today, []eligdm.EmployeeEligibility{rec}, nil)

		gomega.Expect(changed).To(gomega.BeEmpty())
	})

	ginkgo.It("skips retired records", func() {
		rec := liveRecord(10, 1, StatusActive)
		rec.Retire(today.AddDate(0, -1, 0))
		matched := cert(1, 10, 1, datePtr(2024, time.January, 15))
		latest := map[CertKey]certdm.EmployeeCertification{
			{EmployeeID: 10, RuleID: 1}: matched,
		}

		changed := PlanSync(today, []eligdm.EmployeeEligibility{rec}, latest)

		gomega.Expect(changed).To(gomega.BeEmpty())
	})

	ginkgo.It("marks records DUE inside the reminder window", func() {
		rec := liveRecord(10, 1, StatusActive)
		rec.CertNumber = strPtr("CERT-001")
		rec.CertDate = datePtr(2024, time.January, 15)
		rec.DueDate = datePtr(2025, time.January, 15)
		matched := cert(1, 10, 1, datePtr(2024, time.January, 15))
		matched.ValidUntil = datePtr(2025, time.January, 15)
		matched.ReminderDate = datePtr(2024, time.December, 15)
		latest := map[CertKey]certdm.EmployeeCertification{
			{EmployeeID: 10, RuleID: 1}: matched,
		}

		changed := PlanSync(time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC),
			[]eligdm.EmployeeEligibility{rec}, latest)

		gomega.Expect(changed).To(gomega.HaveLen(1))
		gomega.Expect(changed[0].Status).To(gomega.Equal(StatusDue))
	})
})
