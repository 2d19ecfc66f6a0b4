// Package sqlxrepos implements the domain repositories on PostgreSQL via
// sqlx. Repositories assign uuid ids on insert; nullable columns map to
// null.* fields on the row structs.
package sqlxrepos

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core"
)

func newID() string { return uuid.New().String() }

// trapNoRowsErr converts sql.ErrNoRows into the domain's sentinel.
func trapNoRowsErr(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

func fmtDate(t time.Time) string { return t.Format(core.DateFormat) }

func itoa(n int) string { return strconv.Itoa(n) }
