package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core"
)

type Student struct {
	ID         string      `json:"id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Email      null.String `json:"email,omitempty"`
	Phone      null.String `json:"phone,omitempty"` // stored format, e.g. +5491144445555
	ExternalID null.String `json:"external_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"` // UTC
}

// FullName is "LastName, FirstName", the sort key used by rosters and reports.
func (s Student) FullName() string {
	return s.LastName + ", " + s.FirstName
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Any subset of fields may be present; empty names are
// ignored, contact fields may be cleared by sending "".
type UpdateStudent struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	PhoneArea  *string `json:"phone_area"`
	PhoneLocal *string `json:"phone_number"`
	ExternalID *string `json:"external_id"`
}

func (us *UpdateStudent) Validate() error {
	if us.FirstName != nil {
		first := core.CleanString(*us.FirstName)
		us.FirstName = &first
	}
	if us.LastName != nil {
		last := core.CleanString(*us.LastName)
		us.LastName = &last
	}
	if us.Email != nil {
		email := core.CleanString(*us.Email, true /* lower */)
		if !IsValidEmail(email) {
			return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "invalid email address"})
		}
		us.Email = &email
	}

	var area, local string
	if us.PhoneArea != nil {
		area = core.CleanString(*us.PhoneArea)
	}
	if us.PhoneLocal != nil {
		local = core.CleanString(*us.PhoneLocal)
	}
	if (us.PhoneArea != nil || us.PhoneLocal != nil) && !IsValidPhone(area, local) {
		return core.NewValidationError(nil, core.FieldError{Field: "phone_number", Error: "invalid phone number"})
	}
	return nil
}

func (us *UpdateStudent) apply(stu Student) Student {
	if us.FirstName != nil && *us.FirstName != "" {
		stu.FirstName = *us.FirstName
	}
	if us.LastName != nil && *us.LastName != "" {
		stu.LastName = *us.LastName
	}
	if us.Email != nil {
		stu.Email = null.NewString(*us.Email, *us.Email != "")
	}
	if us.PhoneArea != nil || us.PhoneLocal != nil {
		var area, local string
		if us.PhoneArea != nil {
			area = *us.PhoneArea
		}
		if us.PhoneLocal != nil {
			local = *us.PhoneLocal
		}
		phone := FormatPhoneForStorage(DefaultCountryCode, area, local)
		stu.Phone = null.NewString(phone, phone != "")
	}
	if us.ExternalID != nil {
		stu.ExternalID = null.NewString(*us.ExternalID, *us.ExternalID != "")
	}
	return stu
}
