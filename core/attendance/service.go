package attendance

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/stats"
)

var ErrNotFound = errors.New("attendance record not found")

type (
	Repository interface {
		// UpsertRecords writes one row per (course, student, date), replacing
		// any existing row for the same key.
		UpsertRecords(ctx context.Context, recs []Record) error
		InsertMarker(ctx context.Context, rec Record) (Record, error)
		// DeleteMarker is a no-op when no marker exists for the date.
		DeleteMarker(ctx context.Context, courseID, date string) error
		DeleteRecord(ctx context.Context, courseID, studentID, date string) error // ErrNotFound
		// QueryRecords returns rows ordered by date desc, student asc.
		// Empty from/to bounds are open.
		QueryRecords(ctx context.Context, courseID, from, to string) ([]Record, error)
	}

	// CourseMeta persists the cached course-level attendance average.
	CourseMeta interface {
		SetAvgAttendance(ctx context.Context, courseID string, avg float64) error
	}

	Service struct {
		repo    Repository
		courses CourseMeta
		calc    *stats.Calculator
	}
)

func NewService(repo Repository, courses CourseMeta, calc *stats.Calculator) *Service {
	return &Service{repo: repo, courses: courses, calc: calc}
}

// Record applies one BulkWrite: any prior suspension marker for the date is
// cleared first, then either per-student rows are upserted or a single marker
// row is inserted. The course's cached attendance average is recomputed and
// persisted, and returned.
func (svc *Service) Record(ctx context.Context, courseID string, bw BulkWrite) (float64, error) {
	if err := svc.repo.DeleteMarker(ctx, courseID, bw.Date); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	if len(bw.Records) > 0 {
		recs := make([]Record, len(bw.Records))
		for i, ss := range bw.Records {
			recs[i] = Record{
				CourseID:         courseID,
				StudentID:        null.StringFrom(ss.StudentID),
				Date:             bw.Date,
				Status:           null.StringFrom(ss.Status),
				SuspensionReason: null.NewString(bw.SuspensionReason, bw.SuspensionReason != ""),
				Note:             null.NewString(bw.Note, bw.Note != ""),
				CreatedAt:        now,
			}
		}
		if err := svc.repo.UpsertRecords(ctx, recs); err != nil {
			return 0, err
		}
	} else {
		marker := Record{
			CourseID:         courseID,
			Date:             bw.Date,
			SuspensionReason: null.StringFrom(bw.SuspensionReason),
			Note:             null.NewString(bw.Note, bw.Note != ""),
			CreatedAt:        now,
		}
		if _, err := svc.repo.InsertMarker(ctx, marker); err != nil {
			return 0, err
		}
	}
	return svc.refreshAverage(ctx, courseID)
}

// Delete removes a single student's mark for a date and refreshes the cached
// course average.
func (svc *Service) Delete(ctx context.Context, courseID, studentID, date string) (float64, error) {
	if err := svc.repo.DeleteRecord(ctx, courseID, studentID, date); err != nil {
		return 0, err
	}
	return svc.refreshAverage(ctx, courseID)
}

// History returns the course's attendance rows, newest date first, optionally
// bounded by from/to (inclusive, YYYY-MM-DD).
func (svc *Service) History(ctx context.Context, courseID, from, to string) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, courseID, from, to)
}

// Matrix builds the attendance grid for the course.
func (svc *Service) Matrix(ctx context.Context, courseID string) (Matrix, error) {
	recs, err := svc.repo.QueryRecords(ctx, courseID, "", "")
	if err != nil {
		return Matrix{}, err
	}

	mtx := Matrix{Dates: []string{}, Records: make(map[string]map[string]string)}
	seen := make(map[string]bool)
	for _, rec := range recs {
		if !seen[rec.Date] {
			seen[rec.Date] = true
			mtx.Dates = append(mtx.Dates, rec.Date)
		}
		if rec.IsMarker() || !rec.Status.Valid {
			continue
		}
		cells, ok := mtx.Records[rec.StudentID.String]
		if !ok {
			cells = make(map[string]string)
			mtx.Records[rec.StudentID.String] = cells
		}
		cells[rec.Date] = rec.Status.String
	}
	sort.Strings(mtx.Dates)
	return mtx, nil
}

func (svc *Service) refreshAverage(ctx context.Context, courseID string) (float64, error) {
	avg, err := svc.calc.CourseAttendance(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if err = svc.courses.SetAvgAttendance(ctx, courseID, avg); err != nil {
		return 0, err
	}
	return avg, nil
}
