package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/certification-management/internal"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
)

// RuleRepository implements rule.Repository and the eligibility engine's
// RequirementReader on the same gorm handle.
type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// ----------------- RULES -----------------

func (r *RuleRepository) CreateRule(rule *ruledm.CertificationRule) error {
	return r.db.Create(rule).Error
}

func (r *RuleRepository) GetRule(id int64) (*ruledm.CertificationRule, error) {
	var rule ruledm.CertificationRule
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepository) ListRules(limit, offset int) ([]ruledm.CertificationRule, error) {
	var rules []ruledm.CertificationRule
	err := r.db.Where("deleted_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rules).Error
	return rules, err
}

func (r *RuleRepository) UpdateRule(rule *ruledm.CertificationRule) error {
	rule.UpdatedAt = time.Now()
	return r.db.Save(rule).Error
}

func (r *RuleRepository) FindRulesByAttributes(certificationName string, level, subField *string) ([]ruledm.CertificationRule, error) {
	query := r.db.Where("certification_name = ? AND is_active = ? AND deleted_at IS NULL", certificationName, true)

	if level != nil {
		query = query.Where("level = ?", *level)
	} else {
		query = query.Where("level IS NULL")
	}
	if subField != nil {
		query = query.Where("sub_field = ?", *subField)
	} else {
		query = query.Where("sub_field IS NULL")
	}

	var rules []ruledm.CertificationRule
	err := query.Order("id ASC").Find(&rules).Error
	return rules, err
}

func (r *RuleRepository) RulesByIDs(ids []int64) ([]ruledm.CertificationRule, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rules []ruledm.CertificationRule
	err := r.db.Where("id IN ?", ids).Find(&rules).Error
	return rules, err
}

// ----------------- JOB MAPPINGS -----------------

func (r *RuleRepository) CreateMapping(m *ruledm.JobCertificationMapping) error {
	return r.db.Create(m).Error
}

func (r *RuleRepository) GetMapping(id int64) (*ruledm.JobCertificationMapping, error) {
	var m ruledm.JobCertificationMapping
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrMappingNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *RuleRepository) GetMappingByPair(jobPositionID, ruleID int64) (*ruledm.JobCertificationMapping, error) {
	var m ruledm.JobCertificationMapping
	err := r.db.Where("job_position_id = ? AND rule_id = ?", jobPositionID, ruleID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrMappingNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *RuleRepository) ListMappingsForJob(jobPositionID int64) ([]ruledm.JobCertificationMapping, error) {
	var mappings []ruledm.JobCertificationMapping
	err := r.db.Where("job_position_id = ? AND deleted_at IS NULL", jobPositionID).
		Order("rule_id ASC").
		Find(&mappings).Error
	return mappings, err
}

func (r *RuleRepository) ListMappingsForRule(ruleID int64) ([]ruledm.JobCertificationMapping, error) {
	var mappings []ruledm.JobCertificationMapping
	err := r.db.Where("rule_id = ? AND deleted_at IS NULL", ruleID).
		Order("job_position_id ASC").
		Find(&mappings).Error
	return mappings, err
}

func (r *RuleRepository) UpdateMapping(m *ruledm.JobCertificationMapping) error {
	m.UpdatedAt = time.Now()
	return r.db.Save(m).Error
}

// ActiveMappingsForJob feeds requirement resolution: a mapping only counts
// while its rule is live and active too.
func (r *RuleRepository) ActiveMappingsForJob(jobPositionID int64) ([]ruledm.JobCertificationMapping, error) {
	var mappings []ruledm.JobCertificationMapping
	err := r.db.
		Joins("JOIN certification_rules ON certification_rules.id = job_certification_mappings.rule_id").
		Where("job_certification_mappings.job_position_id = ?", jobPositionID).
		Where("job_certification_mappings.is_active = ? AND job_certification_mappings.deleted_at IS NULL", true).
		Where("certification_rules.is_active = ? AND certification_rules.deleted_at IS NULL", true).
		Order("job_certification_mappings.rule_id ASC").
		Find(&mappings).Error
	return mappings, err
}

// ----------------- EXCEPTIONS -----------------

func (r *RuleRepository) CreateException(exc *ruledm.EligibilityException) error {
	return r.db.Create(exc).Error
}

func (r *RuleRepository) GetException(id int64) (*ruledm.EligibilityException, error) {
	var exc ruledm.EligibilityException
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&exc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExceptionNotFound
		}
		return nil, err
	}
	return &exc, nil
}

func (r *RuleRepository) GetExceptionByPair(employeeID, ruleID int64) (*ruledm.EligibilityException, error) {
	var exc ruledm.EligibilityException
	err := r.db.Where("employee_id = ? AND rule_id = ?", employeeID, ruleID).First(&exc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExceptionNotFound
		}
		return nil, err
	}
	return &exc, nil
}

func (r *RuleRepository) UpdateException(exc *ruledm.EligibilityException) error {
	exc.UpdatedAt = time.Now()
	return r.db.Save(exc).Error
}

// ActiveExceptionsForEmployee feeds requirement resolution; like mappings,
// an exception only counts while its rule is live and active.
func (r *RuleRepository) ActiveExceptionsForEmployee(employeeID int64) ([]ruledm.EligibilityException, error) {
	var exceptions []ruledm.EligibilityException
	err := r.db.
		Joins("JOIN certification_rules ON certification_rules.id = eligibility_exceptions.rule_id").
		Where("eligibility_exceptions.employee_id = ?", employeeID).
		Where("eligibility_exceptions.is_active = ? AND eligibility_exceptions.deleted_at IS NULL", true).
		Where("certification_rules.is_active = ? AND certification_rules.deleted_at IS NULL", true).
		Order("eligibility_exceptions.rule_id ASC").
		Find(&exceptions).Error
	return exceptions, err
}
