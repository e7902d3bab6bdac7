package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by primary key or filter matches no
// row. It aliases gorm's sentinel so callers can use errors.Is directly on
// results bubbled up from the driver.
var ErrNotFound = gorm.ErrRecordNotFound

// Kind classifies repository failures so upper layers can pick a response
// without inspecting driver errors.
type Kind string

const (
	// KindStorage covers generic database failures (I/O, syntax, driver).
	KindStorage Kind = "storage"
	// KindConflict covers integrity violations: duplicate keys and broken
	// foreign key references.
	KindConflict Kind = "conflict"
	// KindValidation covers inputs rejected before touching storage, such
	// as an empty update payload.
	KindValidation Kind = "validation"
	// KindConfig covers misuse of the repository itself, such as soft
	// deleting an entity that declares no soft-delete flag.
	KindConfig Kind = "config"
)

// Error wraps a failed repository operation with its name and classification.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConflict:
		return fmt.Sprintf("integrity error during %s: %v", e.Op, e.Err)
	case KindValidation:
		return fmt.Sprintf("invalid input for %s: %v", e.Op, e.Err)
	case KindConfig:
		return fmt.Sprintf("repository misconfigured for %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// wrap classifies err for the given operation. Integrity violations reported
// by gorm's error translator become KindConflict; everything else is a
// storage failure. gorm.ErrRecordNotFound passes through untouched.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	kind := KindStorage
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		kind = KindConflict
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func validationErr(op string, msg string) error {
	return &Error{Op: op, Kind: KindValidation, Err: errors.New(msg)}
}

func configErr(op string, msg string) error {
	return &Error{Op: op, Kind: KindConfig, Err: errors.New(msg)}
}

// IsKind reports whether err is a repository Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

// IsConflict reports whether err stems from an integrity violation.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }
