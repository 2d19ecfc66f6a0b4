package grade

import (
	"time"

	"github.com/aulacheck/aulacheck/core"
)

type (
	// Grade is one scored assessment for a (course, student) pair. Multiple
	// grades per student are expected; there is no uniqueness constraint.
	Grade struct {
		ID         string    `json:"id"`
		CourseID   string    `json:"course_id"`
		StudentID  string    `json:"student_id"`
		Assessment string    `json:"assessment"`
		Date       string    `json:"date"` // YYYY-MM-DD
		Score      float64   `json:"score"`
		Weight     float64   `json:"weight"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	NewGrade struct {
		StudentID  string  `json:"student_id" validate:"required"`
		Assessment string  `json:"assessment" validate:"required"`
		Date       string  `json:"date" validate:"required,dateonly"`
		Score      float64 `json:"score" validate:"min=0,max=10"`
		Weight     float64 `json:"weight" validate:"gt=0"`
	}
)

func (ng *NewGrade) Validate() error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.Assessment = core.CleanString(ng.Assessment)
	ng.Date = core.CleanString(ng.Date)
	return core.Validate.Struct(ng)
}
