package eligibility

import (
	"time"

	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func liveRecord(employeeID, ruleID int64, status string) eligdm.EmployeeEligibility {
	return eligdm.EmployeeEligibility{
		ID:         ruleID * 100,
		EmployeeID: employeeID,
		RuleID:     ruleID,
		Source:     SourceByJob,
		Status:     status,
		IsActive:   true,
	}
}

var _ = ginkgo.Describe("PlanReconcile", func() {
	var (
		now   time.Time
		emp   *employeedm.Employee
		rules map[int64]ruledm.CertificationRule
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		emp = activeEmployee(10, int64Ptr(5))
		rules = map[int64]ruledm.CertificationRule{
			1: {ID: 1, CertificationName: "welding", ValidityMonths: intPtr(12), ReminderMonths: intPtr(1), IsActive: true},
			2: {ID: 2, CertificationName: "first_aid", IsActive: true},
		}
	})

	ginkgo.It("creates records for required rules with no row, snapshotting the rule windows", func() {
		required := []RequiredRule{{RuleID: 1, Source: SourceByJob}}

		plan := PlanReconcile(emp, nil, required, rules, now)

		gomega.Expect(plan.Create).To(gomega.HaveLen(1))
		created := plan.Create[0]
		gomega.Expect(created.EmployeeID).To(gomega.Equal(int64(10)))
		gomega.Expect(created.RuleID).To(gomega.Equal(int64(1)))
		gomega.Expect(created.Status).To(gomega.Equal(StatusNotYetCertified))
		gomega.Expect(*created.ValidityMonths).To(gomega.Equal(12))
		gomega.Expect(*created.ReminderMonths).To(gomega.Equal(1))
		gomega.Expect(*created.JobPositionID).To(gomega.Equal(int64(5)))
		gomega.Expect(plan.Retire).To(gomega.BeEmpty())
		gomega.Expect(plan.Reactivate).To(gomega.BeEmpty())
		gomega.Expect(plan.Refresh).To(gomega.BeEmpty())
	})

	ginkgo.It("is idempotent: a second pass over applied rows plans nothing", func() {
		required := []RequiredRule{{RuleID: 1, Source: SourceByJob}}

		first := PlanReconcile(emp, nil, required, rules, now)
		gomega.Expect(first.Writes()).To(gomega.Equal(1))

		second := PlanReconcile(emp, first.Create, required, rules, now)
		gomega.Expect(second.Empty()).To(gomega.BeTrue())
	})

	ginkgo.It("retires live untouched rows whose requirement disappeared", func() {
		existing := []eligdm.EmployeeEligibility{liveRecord(10, 1, StatusNotYetCertified)}

		plan := PlanReconcile(emp, existing, nil, rules, now)

		gomega.Expect(plan.Retire).To(gomega.HaveLen(1))
		gomega.Expect(plan.Retire[0].DeletedAt).ToNot(gomega.BeNil())
		gomega.Expect(plan.Retire[0].IsActive).To(gomega.BeFalse())
	})

	ginkgo.It("never retires rows with certification history", func() {
		existing := []eligdm.EmployeeEligibility{
			liveRecord(10, 1, StatusActive),
			liveRecord(10, 2, StatusExpired),
		}

		plan := PlanReconcile(emp, existing, nil, rules, now)

		gomega.Expect(plan.Empty()).To(gomega.BeTrue())
	})

	ginkgo.It("reactivates the retired row instead of creating a second one", func() {
		retired := liveRecord(10, 1, StatusActive)
		retired.Retire(now.AddDate(0, -1, 0))
		required := []RequiredRule{{RuleID: 1, Source: SourceByName}}

		plan := PlanReconcile(emp, []eligdm.EmployeeEligibility{retired}, required, rules, now)

		gomega.Expect(plan.Create).To(gomega.BeEmpty())
		gomega.Expect(plan.Reactivate).To(gomega.HaveLen(1))
		revived := plan.Reactivate[0]
		gomega.Expect(revived.DeletedAt).To(gomega.BeNil())
		gomega.Expect(revived.IsActive).To(gomega.BeTrue())
		gomega.Expect(revived.Source).To(gomega.Equal(SourceByName))
		// certification history survives the round trip
		gomega.Expect(revived.Status).To(gomega.Equal(StatusActive))
	})

	ginkgo.It("refreshes the snapshot when the rule windows changed", func() {
		rec := liveRecord(10, 1, StatusActive)
		rec.ValidityMonths = intPtr(6)
		rec.ReminderMonths = intPtr(1)
		rec.JobPositionID = int64Ptr(5)
		required := []RequiredRule{{RuleID: 1, Source: SourceByJob}}

		plan := PlanReconcile(emp, []eligdm.EmployeeEligibility{rec}, required, rules, now)

		gomega.Expect(plan.Refresh).To(gomega.HaveLen(1))
		gomega.Expect(*plan.Refresh[0].ValidityMonths).To(gomega.Equal(12))
		// status is the synchronizer's business
		gomega.Expect(plan.Refresh[0].Status).To(gomega.Equal(StatusActive))
	})

	ginkgo.It("plans nothing for a live required row whose snapshot is current", func() {
		rec := liveRecord(10, 1, StatusActive)
		rec.ValidityMonths = intPtr(12)
		rec.ReminderMonths = intPtr(1)
		rec.JobPositionID = int64Ptr(5)
		required := []RequiredRule{{RuleID: 1, Source: SourceByJob}}

		plan := PlanReconcile(emp, []eligdm.EmployeeEligibility{rec}, required, rules, now)

		gomega.Expect(plan.Empty()).To(gomega.BeTrue())
	})

	ginkgo.Context("when the employee is offboarded", func() {
		ginkgo.It("retires every live record regardless of certification history", func() {
			emp.Status = employeedm.StatusResigned
			existing := []eligdm.EmployeeEligibility{
				liveRecord(10, 1, StatusActive),
				liveRecord(10, 2, StatusNotYetCertified),
			}

			plan := PlanReconcile(emp, existing, nil, rules, now)

			gomega.Expect(plan.Retire).To(gomega.HaveLen(2))
			for _, rec := range plan.Retire {
				gomega.Expect(rec.DeletedAt).ToNot(gomega.BeNil())
			}
		})

		ginkgo.It("leaves already retired records alone", func() {
			emp.Status = employeedm.StatusTerminated
			retired := liveRecord(10, 1, StatusActive)
			retired.Retire(now.AddDate(0, -2, 0))

			plan := PlanReconcile(emp, []eligdm.EmployeeEligibility{retired}, nil, rules, now)

			gomega.Expect(plan.Empty()).To(gomega.BeTrue())
		})
	})
})
