package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	wraperrors "github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/student"
)

// reconcile reports enrollment records left inconsistent by interrupted
// writes (an approval is several statements without a wrapping transaction).
// It only reports; fixing is left to the operator.
func (cli *commandLine) reconcile(courseID string, staleDays int) error {
	ctx := context.Background()

	crs, err := cli.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	fmt.Printf("Reconciling %q (%s)\n", crs.Name, crs.ID)

	enrollments, err := cli.enrollRepo.QueryEnrollments(ctx, courseID, "")
	if err != nil {
		return wraperrors.Wrap(err, "querying enrollments")
	}

	issues := 0

	// enrollments pointing at missing students
	names := make(map[string]bool) // enrolled "last, first" keys, lowercased
	activeCount := 0
	for _, enr := range enrollments {
		if enr.Status == enroll.StatusActive {
			activeCount++
		}
		std, err := cli.studentRepo.GetStudent(ctx, enr.StudentID)
		if err != nil {
			if wraperrors.Cause(err) == student.ErrNotFound {
				issues++
				fmt.Printf("  MISSING STUDENT: enrollment %s references student %s\n", enr.ID, enr.StudentID)
				continue
			}
			return err
		}
		names[core.CleanString(std.FullName(), true /* lower */)] = true
	}

	// cached counter drift
	if crs.Meta.StudentCount != activeCount {
		issues++
		fmt.Printf("  COUNT DRIFT: cached student count %d, active enrollments %d\n", crs.Meta.StudentCount, activeCount)
	}

	// approved requests whose applicant never made it onto the roster
	approved, err := cli.enrollRepo.QueryJoinRequests(ctx, courseID, enroll.RequestApproved)
	if err != nil {
		return wraperrors.Wrap(err, "querying approved join requests")
	}
	for _, req := range approved {
		key := core.CleanString(strings.Join([]string{req.LastName, req.FirstName}, ", "), true /* lower */)
		if !names[key] {
			issues++
			fmt.Printf("  UNAPPLIED APPROVAL: request %s (%s, %s) has no matching enrollment\n", req.ID, req.LastName, req.FirstName)
		}
	}

	// stale pending requests
	pending, err := cli.enrollRepo.QueryJoinRequests(ctx, courseID, enroll.RequestPending)
	if err != nil {
		return wraperrors.Wrap(err, "querying pending join requests")
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -staleDays)
	for _, req := range pending {
		if req.CreatedAt.Before(cutoff) {
			issues++
			fmt.Printf("  STALE REQUEST: %s (%s, %s) pending since %s\n",
				req.ID, req.LastName, req.FirstName, req.CreatedAt.Format(core.DateFormat))
		}
	}

	if issues == 0 {
		fmt.Println("  OK: no inconsistencies found")
	} else {
		fmt.Printf("  %d issue(s) found\n", issues)
	}
	return nil
}
