package employee

import "time"

const (
	StatusActive     = "ACTIVE"
	StatusResigned   = "RESIGNED"
	StatusTerminated = "TERMINATED"
)

type Employee struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	EmployeeNumber string     `gorm:"column:employee_number;uniqueIndex;not null" json:"employee_number"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	Email          string     `gorm:"column:email" json:"email"`
	JobPositionID  *int64     `gorm:"column:job_position_id" json:"job_position_id"`
	OrgUnitID      *int64     `gorm:"column:org_unit_id" json:"org_unit_id"`
	Status         string     `gorm:"column:status;default:ACTIVE" json:"status"`
	JoinDate       *time.Time `gorm:"column:join_date;type:date" json:"join_date"`
	ResignDate     *time.Time `gorm:"column:resign_date;type:date" json:"resign_date"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

// IsOffboarded reports whether the employee no longer carries any
// certification requirements: resigned, terminated, or soft-deleted.
func (e *Employee) IsOffboarded() bool {
	return e.DeletedAt != nil || e.Status == StatusResigned || e.Status == StatusTerminated
}

type JobPosition struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	IsActive  bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (JobPosition) TableName() string {
	return "job_positions"
}
