package student

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(ctx context.Context, stu Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		GetStudents(ctx context.Context, ids []string) ([]Student, error)
		UpdateStudent(ctx context.Context, stu Student) (Student, error)
		// OwnsActiveEnrollment reports whether the student has at least one
		// active enrollment in a course owned by the principal.
		OwnsActiveEnrollment(ctx context.Context, studentID, principalID string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	stu, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, us.apply(stu))
}

// VerifyAccess reports whether the principal may act on the student: true
// iff the student is actively enrolled in at least one course the principal
// owns. Missing students yield false, not an error.
func (svc *Service) VerifyAccess(ctx context.Context, studentID, principalID string) (bool, error) {
	return svc.repo.OwnsActiveEnrollment(ctx, studentID, principalID)
}
