package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db          *sql.DB
	courseRepo  course.Repository
	studentRepo student.Repository
	enrollRepo  enroll.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                  - run DB migrations (up, down, redo, status, ...)")
	fmt.Println("  gentoken -id ID [-name NAME] [-email EMAIL] - generate a signed API token for a principal")
	fmt.Println("  reconcile -course COURSE_ID [-staledays N]  - report inconsistent enrollment records")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	genTokenCmd := flag.NewFlagSet("gentoken", flag.ExitOnError)
	genTokenID := genTokenCmd.String("id", "", "The principal's id (JWT subject).")
	genTokenName := genTokenCmd.String("name", "", "The principal's display name.")
	genTokenEmail := genTokenCmd.String("email", "", "The principal's email.")

	reconcileCmd := flag.NewFlagSet("reconcile", flag.ExitOnError)
	reconcileCourse := reconcileCmd.String("course", "", "The course to check.")
	reconcileStaleDays := reconcileCmd.Int("staledays", 30, "Age in days after which a pending join request is reported as stale.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "gentoken":
		if err := genTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *genTokenID == "" {
			genTokenCmd.Usage()
			return errHelp
		}
		return cli.genToken(*genTokenID, *genTokenName, *genTokenEmail)
	case "reconcile":
		if err := reconcileCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reconcileCourse == "" {
			reconcileCmd.Usage()
			return errHelp
		}
		return cli.reconcile(*reconcileCourse, *reconcileStaleDays)
	default:
		cli.printUsage()
		return errHelp
	}
}
