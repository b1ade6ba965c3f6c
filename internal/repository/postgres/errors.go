package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pqExclusionViolation  = "23P01"
	pqForeignKeyViolation = "23503"
	pqInvalidTextRep      = "22P02"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
