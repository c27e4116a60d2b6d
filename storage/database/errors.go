package database

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// UniqueViolation returns the name of the violated unique constraint, if err is one.
func UniqueViolation(err error) (string, bool) {
	return constraintViolation(err, codeUniqueViolation)
}

// ForeignKeyViolation returns the name of the violated foreign key constraint, if err is one.
func ForeignKeyViolation(err error) (string, bool) {
	return constraintViolation(err, codeForeignKeyViolation)
}

func constraintViolation(err error, code pq.ErrorCode) (string, bool) {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == code {
		return pqErr.Constraint, true
	}
	return "", false
}
