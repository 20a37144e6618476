package eligibility

import (
	"testing"
	"time"

	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestEligibility(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Eligibility Module Suite")
}

func int64Ptr(i int64) *int64 { return &i }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func activeEmployee(id int64, jobID *int64) *employeedm.Employee {
	return &employeedm.Employee{
		ID:            id,
		Name:          "Test Employee",
		JobPositionID: jobID,
		Status:        employeedm.StatusActive,
	}
}

func mapping(jobID, ruleID int64) ruledm.JobCertificationMapping {
	return ruledm.JobCertificationMapping{
		JobPositionID: jobID,
		RuleID:        ruleID,
		IsActive:      true,
	}
}

func exception(employeeID, ruleID int64) ruledm.EligibilityException {
	return ruledm.EligibilityException{
		EmployeeID: employeeID,
		RuleID:     ruleID,
		IsActive:   true,
	}
}

var _ = ginkgo.Describe("ResolveRequirements", func() {
	ginkgo.It("unions job mappings and exceptions", func() {
		emp := activeEmployee(10, int64Ptr(5))
		mappings := []ruledm.JobCertificationMapping{mapping(5, 1), mapping(5, 2)}
		exceptions := []ruledm.EligibilityException{exception(10, 3)}

		required := ResolveRequirements(emp, mappings, exceptions)

		gomega.Expect(required).To(gomega.Equal([]RequiredRule{
			{RuleID: 1, Source: SourceByJob},
			{RuleID: 2, Source: SourceByJob},
			{RuleID: 3, Source: SourceByName},
		}))
	})

	ginkgo.It("labels overlapping rules BY_JOB", func() {
		emp := activeEmployee(10, int64Ptr(5))
		mappings := []ruledm.JobCertificationMapping{mapping(5, 1)}
		exceptions := []ruledm.EligibilityException{exception(10, 1)}

		required := ResolveRequirements(emp, mappings, exceptions)

		gomega.Expect(required).To(gomega.HaveLen(1))
		gomega.Expect(required[0].Source).To(gomega.Equal(SourceByJob))
	})

	ginkgo.It("skips inactive and deleted mappings", func() {
		emp := activeEmployee(10, int64Ptr(5))
		inactive := mapping(5, 1)
		inactive.IsActive = false
		deleted := mapping(5, 2)
		deleted.DeletedAt = datePtr(2024, time.January, 1)
		mappings := []ruledm.JobCertificationMapping{inactive, deleted, mapping(5, 3)}

		required := ResolveRequirements(emp, mappings, nil)

		gomega.Expect(required).To(gomega.Equal([]RequiredRule{{RuleID: 3, Source: SourceByJob}}))
	})

	ginkgo.It("skips inactive exceptions and other employees' exceptions", func() {
		emp := activeEmployee(10, nil)
		inactive := exception(10, 1)
		inactive.IsActive = false
		other := exception(99, 2)
		exceptions := []ruledm.EligibilityException{inactive, other, exception(10, 3)}

		required := ResolveRequirements(emp, nil, exceptions)

		gomega.Expect(required).To(gomega.Equal([]RequiredRule{{RuleID: 3, Source: SourceByName}}))
	})

	ginkgo.It("ignores job mappings when the employee holds no position", func() {
		emp := activeEmployee(10, nil)
		mappings := []ruledm.JobCertificationMapping{mapping(5, 1)}

		required := ResolveRequirements(emp, mappings, nil)

		gomega.Expect(required).To(gomega.BeEmpty())
	})

	ginkgo.It("resolves to the empty set for resigned employees", func() {
		emp := activeEmployee(10, int64Ptr(5))
		emp.Status = employeedm.StatusResigned
		mappings := []ruledm.JobCertificationMapping{mapping(5, 1)}
		exceptions := []ruledm.EligibilityException{exception(10, 2)}

		required := ResolveRequirements(emp, mappings, exceptions)

		gomega.Expect(required).To(gomega.BeEmpty())
	})

	ginkgo.It("resolves to the empty set for soft-deleted employees", func() {
		emp := activeEmployee(10, int64Ptr(5))
		emp.DeletedAt = datePtr(2024, time.January, 1)

		required := ResolveRequirements(emp, []ruledm.JobCertificationMapping{mapping(5, 1)}, nil)

		gomega.Expect(required).To(gomega.BeEmpty())
	})
})
