package encode

import (
	"errors"
	"fmt"

	"github.com/user/encbridge/pkg/ports"
)

// Error kinds the adapter surfaces to callers. Core encoder status codes are
// folded into these with mapStatus; callers match with errors.Is.
var (
	// ErrResourceExhausted covers allocation, thread and sync-primitive
	// creation failures inside the core encoder.
	ErrResourceExhausted = errors.New("encode: resource exhausted")

	// ErrInvalidParameter covers bad configuration, a bad component handle
	// and undefined behavior reports.
	ErrInvalidParameter = errors.New("encode: invalid parameter")

	// ErrExternal covers failures tearing down the core encoder's own
	// threading and synchronization primitives.
	ErrExternal = errors.New("encode: external encoder failure")

	// ErrUnknown covers status codes with no mapping.
	ErrUnknown = errors.New("encode: unknown encoder error")

	// errEmptyQueue is the transient "no packet ready yet" signal. It never
	// escapes this package: FetchPacket reports it as an empty result.
	errEmptyQueue = errors.New("encode: empty queue")
)

// mapStatus folds a core encoder status code into the package error taxonomy.
// StatusOK maps to nil.
func mapStatus(st ports.CoreStatus) error {
	switch st {
	case ports.StatusOK:
		return nil

	case ports.StatusInsufficientResources:
		return ErrResourceExhausted

	case ports.StatusUndefined,
		ports.StatusInvalidComponent,
		ports.StatusBadParameter:
		return fmt.Errorf("%w: %s", ErrInvalidParameter, st)

	case ports.StatusDestroyThreadFailed,
		ports.StatusSemaphoreUnresponsive,
		ports.StatusDestroySemaphoreFailed,
		ports.StatusCreateMutexFailed,
		ports.StatusMutexUnresponsive,
		ports.StatusDestroyMutexFailed:
		return fmt.Errorf("%w: %s", ErrExternal, st)

	case ports.StatusEmptyQueue:
		return errEmptyQueue

	default:
		return fmt.Errorf("%w: status %d", ErrUnknown, int(st))
	}
}
