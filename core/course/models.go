package course

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core"
)

// Meta carries the cached, denormalized course metrics shown on list views.
// It is a derived view over enrollments/attendance/grades and is never
// authoritative: it can always be recomputed from the source records.
type Meta struct {
	StudentCount  int          `json:"student_count"`
	AvgAttendance float64      `json:"avg_attendance"` // 0-1
	AvgGrade      null.Float64 `json:"avg_grade"`      // 0-10
}

type Course struct {
	ID                string      `json:"id"`
	OwnerID           string      `json:"-"`
	Name              string      `json:"name"`
	InstitutionName   string      `json:"institution_name"`
	StartDate         string      `json:"start_date"` // YYYY-MM-DD
	Description       null.String `json:"description,omitempty"`
	JoinCode          null.String `json:"join_code,omitempty"`
	AllowJoinRequests bool        `json:"allow_join_requests"`
	AnnualClassCount  null.Int    `json:"annual_class_count,omitempty"`
	CreatedAt         time.Time   `json:"created_at"` // UTC
	Meta              Meta        `json:"meta"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name            string `json:"name" validate:"required"`
	InstitutionName string `json:"institution_name" validate:"required"`
	StartDate       string `json:"start_date" validate:"required,dateonly"`
	Description     string `json:"description"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.InstitutionName = core.CleanString(nc.InstitutionName)
	nc.StartDate = core.CleanString(nc.StartDate)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing
// Course. Any subset of fields may be present; nil fields are left untouched.
type UpdateCourse struct {
	Name             *string `json:"name"`
	InstitutionName  *string `json:"institution_name"`
	StartDate        *string `json:"start_date" validate:"omitempty,dateonly"`
	Description      *string `json:"description"`
	AnnualClassCount *int    `json:"annual_class_count"`
}

func (uc *UpdateCourse) Validate() error {
	if uc.Name != nil {
		name := core.CleanString(*uc.Name)
		uc.Name = &name
	}
	if uc.InstitutionName != nil {
		inst := core.CleanString(*uc.InstitutionName)
		uc.InstitutionName = &inst
	}
	if uc.StartDate != nil {
		date := core.CleanString(*uc.StartDate)
		uc.StartDate = &date
	}
	return core.Validate.Struct(uc)
}

func (uc *UpdateCourse) apply(crs Course) Course {
	if uc.Name != nil && *uc.Name != "" {
		crs.Name = *uc.Name
	}
	if uc.InstitutionName != nil && *uc.InstitutionName != "" {
		crs.InstitutionName = *uc.InstitutionName
	}
	if uc.StartDate != nil && *uc.StartDate != "" {
		crs.StartDate = *uc.StartDate
	}
	if uc.Description != nil {
		crs.Description = null.NewString(*uc.Description, *uc.Description != "")
	}
	if uc.AnnualClassCount != nil {
		crs.AnnualClassCount = null.IntFrom(*uc.AnnualClassCount)
	}
	return crs
}
