package queue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// ErrReservationConflict is returned by ReservationRepository.Reserve when
// the key is already held
var ErrReservationConflict = errors.New("queue: reservation key already held")

type AlreadyInProgressError struct {
	*shared.DomainError
	ReservationKey string
}

func NewAlreadyInProgressError(track shared.Track, itemKey, reservationKey string) *AlreadyInProgressError {
	return &AlreadyInProgressError{
		DomainError:    shared.NewDomainError(shared.CodeAlreadyInProgress, fmt.Sprintf("%s %s is already in progress", track, itemKey)),
		ReservationKey: reservationKey,
	}
}

type PrerequisitesNotMetError struct {
	*shared.DomainError
	reasons []string
}

func NewPrerequisitesNotMetError(reasons []string) *PrerequisitesNotMetError {
	return &PrerequisitesNotMetError{
		DomainError: shared.NewDomainError(shared.CodePrerequisitesNotMet, "prerequisites not met: "+strings.Join(reasons, "; ")),
		reasons:     append([]string(nil), reasons...),
	}
}

func (e *PrerequisitesNotMetError) Reasons() []string {
	return append([]string(nil), e.reasons...)
}

type InvalidStateError struct {
	*shared.DomainError
	EntryID string
	Status  Status
}

func NewInvalidStateError(entryID string, status Status, reason string) *InvalidStateError {
	return &InvalidStateError{
		DomainError: shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("queue entry %s (%s): %s", entryID, status, reason)),
		EntryID:     entryID,
		Status:      status,
	}
}

type NotCancellableYetError struct {
	*shared.DomainError
	EntryID string
	Track   shared.Track
}

func NewNotCancellableYetError(entryID string, track shared.Track) *NotCancellableYetError {
	return &NotCancellableYetError{
		DomainError: shared.NewDomainError(shared.CodeNotCancellableYet, fmt.Sprintf("%s entry %s cannot be cancelled once started", track, entryID)),
		EntryID:     entryID,
		Track:       track,
	}
}
