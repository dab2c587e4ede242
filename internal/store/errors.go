package store

import (
	"errors"
	"fmt"
)

var (
	ErrCategoryInUse   = errors.New("category in use")
	ErrUnknownCategory = errors.New("unknown category")
	ErrPersist         = errors.New("persist failed")
)

const categoryInUseMessage = "Cannot delete category with expenses. Please delete or reassign those expenses first."

// CategoryInUseError is returned when a category still has expenses.
type CategoryInUseError struct {
	CategoryID string
	Expenses   int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("delete category %s: %d expenses reference it", e.CategoryID, e.Expenses)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}

// UserMessage is the notice shown to the user.
func (e *CategoryInUseError) UserMessage() string {
	return categoryInUseMessage
}

// PersistError wraps a failed write of one collection. The in-memory change
// has already been applied and stays pending until Flush succeeds.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}

func (e *PersistError) UserMessage() string {
	return "Your change was kept but could not be saved yet. It will be saved with your next change."
}
