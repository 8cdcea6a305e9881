// Package errors provides structured error handling for the data layer.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors. Specific sentinels built on these codes match their
	// category sentinel through errors.Is, since Error.Is compares codes.
	CodeNotFound            Code = "NOT_FOUND"
	CodeUniquenessViolation Code = "UNIQUENESS_VIOLATION"
	CodeForeignKeyViolation Code = "FOREIGN_KEY_VIOLATION"
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
)
