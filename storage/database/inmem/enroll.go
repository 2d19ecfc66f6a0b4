package inmemdb

import (
	"context"
	"sort"

	"github.com/aulacheck/aulacheck/core/enroll"
)

type enrollRepository struct {
	db *DB
}

var _ enroll.Repository = (*enrollRepository)(nil) // interface compliance check

func NewEnrollRepository(db *DB) *enrollRepository {
	return &enrollRepository{db: db}
}

func (repo *enrollRepository) CreateEnrollment(_ context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.enrollment.Lock()
	defer repo.db.enrollment.Unlock()

	enr.ID = newID()
	repo.db.enrollment.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollRepository) GetEnrollment(_ context.Context, courseID, studentID string) (enroll.Enrollment, error) {
	repo.db.enrollment.RLock()
	defer repo.db.enrollment.RUnlock()

	for _, enr := range repo.db.enrollment.table {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return *enr, nil
		}
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollRepository) QueryEnrollments(_ context.Context, courseID, status string) ([]enroll.Enrollment, error) {
	repo.db.enrollment.RLock()
	defer repo.db.enrollment.RUnlock()

	enrs := make([]enroll.Enrollment, 0)
	for _, enr := range repo.db.enrollment.table {
		if enr.CourseID != courseID {
			continue
		}
		if status != "" && enr.Status != status {
			continue
		}
		enrs = append(enrs, *enr)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrollDate.After(enrs[j].EnrollDate) })
	return enrs, nil
}

func (repo *enrollRepository) UpdateEnrollment(_ context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.enrollment.Lock()
	defer repo.db.enrollment.Unlock()

	orig, ok := repo.db.enrollment.table[enr.ID]
	if !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	orig.EnrollDate = enr.EnrollDate
	orig.Status = enr.Status
	orig.WithdrawalDate = enr.WithdrawalDate
	orig.WithdrawalReason = enr.WithdrawalReason
	orig.WithdrawalNote = enr.WithdrawalNote
	return *orig, nil
}

func (repo *enrollRepository) CreateJoinRequest(_ context.Context, req enroll.JoinRequest) (enroll.JoinRequest, error) {
	repo.db.joinRequest.Lock()
	defer repo.db.joinRequest.Unlock()

	req.ID = newID()
	repo.db.joinRequest.table[req.ID] = &req
	return req, nil
}

func (repo *enrollRepository) GetJoinRequest(_ context.Context, courseID, reqID string) (enroll.JoinRequest, error) {
	repo.db.joinRequest.RLock()
	defer repo.db.joinRequest.RUnlock()

	if req, ok := repo.db.joinRequest.table[reqID]; ok && req.CourseID == courseID {
		return *req, nil
	}
	return enroll.JoinRequest{}, enroll.ErrRequestNotFound
}

func (repo *enrollRepository) QueryJoinRequests(_ context.Context, courseID, status string) ([]enroll.JoinRequest, error) {
	repo.db.joinRequest.RLock()
	defer repo.db.joinRequest.RUnlock()

	reqs := make([]enroll.JoinRequest, 0)
	for _, req := range repo.db.joinRequest.table {
		if req.CourseID != courseID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func (repo *enrollRepository) UpdateJoinRequest(_ context.Context, req enroll.JoinRequest) (enroll.JoinRequest, error) {
	repo.db.joinRequest.Lock()
	defer repo.db.joinRequest.Unlock()

	orig, ok := repo.db.joinRequest.table[req.ID]
	if !ok {
		return enroll.JoinRequest{}, enroll.ErrRequestNotFound
	}
	orig.Status = req.Status
	orig.ProcessedAt = req.ProcessedAt
	orig.ProcessedBy = req.ProcessedBy
	return *orig, nil
}
