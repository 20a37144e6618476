package eligibility

import (
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/certification-management/internal"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
)

// Service is the eligibility reconciliation engine. All operations are
// bounded, synchronous units of work scoped to one employee or one chunk;
// cross-employee work is independent.
type Service struct {
	repo         Repository
	employees    EmployeeReader
	requirements RequirementReader
	certs        CertificationReader
	logger       *slog.Logger
	clock        Clock
	chunkSize    int
	batchSize    int
}

func NewService(repo Repository, employees EmployeeReader, requirements RequirementReader, certs CertificationReader, logger *slog.Logger, chunkSize, batchSize int) *Service {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Service{
		repo:         repo,
		employees:    employees,
		requirements: requirements,
		certs:        certs,
		logger:       logger,
		clock:        time.Now,
		chunkSize:    chunkSize,
		batchSize:    batchSize,
	}
}

// WithClock pins the evaluation date, for tests.
func (s *Service) WithClock(clock Clock) *Service {
	s.clock = clock
	return s
}

// ResolveRequirements returns the rule set the employee must currently
// satisfy, tagged with the channel each rule arrived through.
func (s *Service) ResolveRequirements(employeeID int64) ([]RequiredRule, error) {
	emp, err := s.employees.GetByID(employeeID)
	if err != nil {
		return nil, err
	}
	if emp.IsOffboarded() {
		return nil, nil
	}

	mappings, exceptions, err := s.loadRequirementInputs(emp)
	if err != nil {
		return nil, err
	}

	return ResolveRequirements(emp, mappings, exceptions), nil
}

// Reconcile diffs the employee's required rule set against their existing
// eligibility rows and applies the resulting plan. Returns the number of
// rows created, reactivated, retired, or refreshed.
func (s *Service) Reconcile(employeeID int64) (int, error) {
	emp, err := s.employees.GetByID(employeeID)
	if err != nil {
		return 0, err
	}

	existing, err := s.repo.GetByEmployee(employeeID)
	if err != nil {
		return 0, internal.NewInternalError("failed to load eligibility records", err)
	}

	var required []RequiredRule
	rules := map[int64]ruledm.CertificationRule{}
	if !emp.IsOffboarded() {
		mappings, exceptions, err := s.loadRequirementInputs(emp)
		if err != nil {
			return 0, err
		}
		required = ResolveRequirements(emp, mappings, exceptions)

		rules, err = s.loadRules(required)
		if err != nil {
			return 0, err
		}
	}

	plan := PlanReconcile(emp, existing, required, rules, s.clock())
	if plan.Empty() {
		return 0, nil
	}

	writes, err := s.applyPlan(emp, plan, required, rules)
	if err != nil {
		return writes, err
	}

	s.logger.Info("eligibility reconciled",
		"employee_id", employeeID,
		"created", len(plan.Create),
		"reactivated", len(plan.Reactivate),
		"retired", len(plan.Retire),
		"refreshed", len(plan.Refresh))

	return writes, nil
}

// applyPlan writes the plan out. A unique-constraint race on create is
// benign: another trigger for the same employee won; we re-read the row and
// merge by reconciling once more against it.
func (s *Service) applyPlan(emp *employeedm.Employee, plan ReconcilePlan, required []RequiredRule, rules map[int64]ruledm.CertificationRule) (int, error) {
	writes := 0

	for i := range plan.Retire {
		if err := s.repo.Save(&plan.Retire[i]); err != nil {
			return writes, internal.NewInternalError("failed to retire eligibility record", err)
		}
		writes++
	}
	for i := range plan.Reactivate {
		if err := s.repo.Save(&plan.Reactivate[i]); err != nil {
			return writes, internal.NewInternalError("failed to reactivate eligibility record", err)
		}
		writes++
	}
	for i := range plan.Refresh {
		if err := s.repo.Save(&plan.Refresh[i]); err != nil {
			return writes, internal.NewInternalError("failed to refresh eligibility record", err)
		}
		writes++
	}
	for i := range plan.Create {
		err := s.repo.Create(&plan.Create[i])
		if err == nil {
			writes++
			continue
		}
		if !errors.Is(err, internal.ErrDuplicateEligibility) {
			return writes, internal.NewInternalError("failed to create eligibility record", err)
		}

		// Lost the race for this pair; merge against the winner's row.
		n, mergeErr := s.mergeAfterConflict(emp, plan.Create[i].RuleID, required, rules)
		if mergeErr != nil {
			return writes, mergeErr
		}
		writes += n
	}

	return writes, nil
}

func (s *Service) mergeAfterConflict(emp *employeedm.Employee, ruleID int64, required []RequiredRule, rules map[int64]ruledm.CertificationRule) (int, error) {
	s.logger.Warn("eligibility create raced, merging",
		"employee_id", emp.ID,
		"rule_id", ruleID)

	rec, err := s.repo.GetByEmployeeAndRule(emp.ID, ruleID)
	if err != nil {
		return 0, internal.NewInternalError("failed to re-read eligibility record after conflict", err)
	}

	plan := PlanReconcile(emp, []eligdm.EmployeeEligibility{*rec}, filterRequired(required, ruleID), rules, s.clock())
	writes := 0
	for i := range plan.Reactivate {
		if err := s.repo.Save(&plan.Reactivate[i]); err != nil {
			return writes, internal.NewInternalError("failed to reactivate eligibility record", err)
		}
		writes++
	}
	for i := range plan.Refresh {
		if err := s.repo.Save(&plan.Refresh[i]); err != nil {
			return writes, internal.NewInternalError("failed to refresh eligibility record", err)
		}
		writes++
	}
	return writes, nil
}

func filterRequired(required []RequiredRule, ruleID int64) []RequiredRule {
	for _, req := range required {
		if req.RuleID == ruleID {
			return []RequiredRule{req}
		}
	}
	return nil
}

// SynchronizeStatus recomputes status and due date for the live eligibility
// rows of a batch of employees from their current certification records.
// Returns the number of rows whose stored state actually changed.
func (s *Service) SynchronizeStatus(employeeIDs []int64) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}

	updated := 0
	for start := 0; start < len(employeeIDs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(employeeIDs) {
			end = len(employeeIDs)
		}

		n, err := s.syncBatch(employeeIDs[start:end])
		if err != nil {
			return updated, err
		}
		updated += n
	}

	return updated, nil
}

func (s *Service) syncBatch(employeeIDs []int64) (int, error) {
	records, err := s.repo.GetLiveByEmployees(employeeIDs)
	if err != nil {
		return 0, internal.NewInternalError("failed to load eligibility records", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	certs, err := s.certs.LiveByEmployees(employeeIDs)
	if err != nil {
		return 0, internal.NewInternalError("failed to load certification records", err)
	}

	changed := PlanSync(s.clock(), records, LatestByPair(certs))
	for i := range changed {
		if err := s.repo.Save(&changed[i]); err != nil {
			return i, internal.NewInternalError("failed to update eligibility status", err)
		}
	}

	if len(changed) > 0 {
		s.logger.Info("eligibility statuses synchronized",
			"employees", len(employeeIDs),
			"updated", len(changed))
	}

	return len(changed), nil
}

// RefreshOne reconciles then synchronizes a single employee.
func (s *Service) RefreshOne(employeeID int64) error {
	if _, err := s.Reconcile(employeeID); err != nil {
		return err
	}
	_, err := s.SynchronizeStatus([]int64{employeeID})
	return err
}

// RefreshForJobPosition refreshes every employee currently in the job
// position. Used when a job mapping changes.
func (s *Service) RefreshForJobPosition(jobPositionID int64) error {
	employeeIDs, err := s.employees.ListIDsByJobPosition(jobPositionID)
	if err != nil {
		return err
	}

	s.logger.Info("refreshing eligibility for job position",
		"job_position_id", jobPositionID,
		"employees", len(employeeIDs))

	s.refreshEach(employeeIDs)
	return nil
}

// RefreshAll walks the active employee population in chunks, reconciling and
// synchronizing each. One employee's failure is logged and skipped; it never
// aborts the remaining chunks. Returns total rows touched.
func (s *Service) RefreshAll() (int, error) {
	total := 0
	offset := 0

	for {
		employeeIDs, err := s.employees.ListActiveIDs(s.chunkSize, offset)
		if err != nil {
			return total, internal.NewInternalError("failed to list employees for refresh", err)
		}
		if len(employeeIDs) == 0 {
			break
		}

		total += s.refreshEach(employeeIDs)
		offset += len(employeeIDs)
	}

	s.logger.Info("full eligibility refresh finished", "rows_touched", total)
	return total, nil
}

func (s *Service) refreshEach(employeeIDs []int64) int {
	total := 0
	synced := make([]int64, 0, len(employeeIDs))

	for _, id := range employeeIDs {
		n, err := s.Reconcile(id)
		if err != nil {
			s.logger.Error("reconcile failed, skipping employee",
				"employee_id", id,
				"error", err)
			continue
		}
		total += n
		synced = append(synced, id)
	}

	n, err := s.SynchronizeStatus(synced)
	if err != nil {
		s.logger.Error("status synchronization failed for chunk", "error", err)
		return total
	}

	return total + n
}

func (s *Service) loadRequirementInputs(emp *employeedm.Employee) ([]ruledm.JobCertificationMapping, []ruledm.EligibilityException, error) {
	var mappings []ruledm.JobCertificationMapping
	if emp.JobPositionID != nil {
		var err error
		mappings, err = s.requirements.ActiveMappingsForJob(*emp.JobPositionID)
		if err != nil {
			return nil, nil, internal.NewInternalError("failed to load job mappings", err)
		}
	}

	exceptions, err := s.requirements.ActiveExceptionsForEmployee(emp.ID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to load eligibility exceptions", err)
	}

	return mappings, exceptions, nil
}

func (s *Service) loadRules(required []RequiredRule) (map[int64]ruledm.CertificationRule, error) {
	if len(required) == 0 {
		return map[int64]ruledm.CertificationRule{}, nil
	}

	ids := make([]int64, len(required))
	for i, req := range required {
		ids[i] = req.RuleID
	}

	rules, err := s.requirements.RulesByIDs(ids)
	if err != nil {
		return nil, internal.NewInternalError("failed to load certification rules", err)
	}

	byID := make(map[int64]ruledm.CertificationRule, len(rules))
	for _, rule := range rules {
		byID[rule.ID] = rule
	}
	return byID, nil
}

// ListForEmployee returns the employee's eligibility rows for reads.
func (s *Service) ListForEmployee(employeeID int64) ([]eligdm.EmployeeEligibility, error) {
	if _, err := s.employees.GetByID(employeeID); err != nil {
		return nil, err
	}

	records, err := s.repo.GetLiveByEmployees([]int64{employeeID})
	if err != nil {
		return nil, internal.NewInternalError("failed to load eligibility records", err)
	}
	return records, nil
}

// ListDue returns records currently in the reminder window, for reminder
// tooling.
func (s *Service) ListDue(limit, offset int) ([]eligdm.EmployeeEligibility, error) {
	records, err := s.repo.ListByStatus(StatusDue, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to load due eligibility records", err)
	}
	return records, nil
}
