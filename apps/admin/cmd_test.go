package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/aulacheck/aulacheck/core/enroll"
	inmemdb "github.com/aulacheck/aulacheck/storage/database/inmem"
	testutil "github.com/aulacheck/aulacheck/tests"
)

func setup(t *testing.T) *commandLine {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return &commandLine{
		courseRepo:  inmemdb.NewCourseRepository(db),
		studentRepo: inmemdb.NewStudentRepository(db),
		enrollRepo:  inmemdb.NewEnrollRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a version", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a version"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_genToken(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no id", args: []string{"gentoken"}, wantErr: errHelp},
		{name: "ok", args: []string{"gentoken", "-id", "teacher1", "-name", "Prof. Rivas"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil && err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_reconcile(t *testing.T) {
	cli := setup(t)

	crs := testutil.CreateCourse(t, cli.courseRepo, "teacher1", "Matemática 3A")
	std := testutil.CreateStudent(t, cli.studentRepo, "Ana", "García")
	testutil.CreateEnrollment(t, cli.enrollRepo, crs.ID, std.ID, enroll.StatusActive)

	tests := []cliTest{
		{name: "no course", args: []string{"reconcile"}, wantErr: errHelp},
		{name: "unknown course", args: []string{"reconcile", "-course", "nope"}, wantErrStr: "course not found"},
		{name: "ok", args: []string{"reconcile", "-course", crs.ID}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				if tt.wantErr != nil || tt.wantErrStr != "" {
					t.Errorf("cli.run() expected an error")
				}
				return
			}
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		})
	}
}
