package errors

import "fmt"

var (
	ErrValidation    = fmt.Errorf("invalid method or parameters")
	ErrDuplicate     = fmt.Errorf("entity already exists")
	ErrMissingEntity = fmt.Errorf("entity not found")
	ErrPermission    = fmt.Errorf("role not allowed for this group model")
	ErrCapacity      = fmt.Errorf("group capacity exceeded")
	ErrRemote        = fmt.Errorf("remote call failed")
	ErrLocked        = fmt.Errorf("identical call already in flight")
	ErrWorkerPanic   = fmt.Errorf("worker panic")
)
