package gradingerrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// Missing identity or malformed input, rejected before any external call. Never retried.
	KindInvalidSubmission Kind = "invalid_submission"
	// Artifact missing or unreadable. Terminal for the item.
	KindExtraction Kind = "extraction_failure"
	// Scoring collaborator unavailable, timed out or errored. Terminal for the item.
	KindScoring Kind = "scoring_failure"
	// Assignment grading configuration could not be loaded or is inconsistent. Terminal for the item.
	KindConfig Kind = "config_failure"
	// Grade record could not be stored. Fatal for the caller.
	KindPersistence Kind = "persistence_failure"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrExtraction        = errors.New("extraction failed")
	ErrScoring           = errors.New("scoring failed")
	ErrConfig            = errors.New("grading config unavailable")
	ErrPersistence       = errors.New("persisting grade record failed")
)

var sentinels = map[Kind]error{
	KindInvalidSubmission: ErrInvalidSubmission,
	KindExtraction:        ErrExtraction,
	KindScoring:           ErrScoring,
	KindConfig:            ErrConfig,
	KindPersistence:       ErrPersistence,
}

// Carries the failure kind and the submission it happened on
//
// Matches the sentinel of its kind with errors.Is
type GradingError struct {
	Err          error
	Kind         Kind
	SubmissionID string
}

func (e GradingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s [%s]", e.Kind, e.SubmissionID)
	}

	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.SubmissionID, e.Err.Error())
}

func (e GradingError) Unwrap() error {
	return e.Err
}

func (e GradingError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func wrap(kind Kind, submissionID string, err error) error {
	return GradingError{Kind: kind, SubmissionID: submissionID, Err: err}
}

func InvalidSubmission(submissionID string, err error) error {
	return wrap(KindInvalidSubmission, submissionID, err)
}

func ExtractionFailure(submissionID string, err error) error {
	return wrap(KindExtraction, submissionID, err)
}

func ScoringFailure(submissionID string, err error) error {
	return wrap(KindScoring, submissionID, err)
}

func ConfigFailure(submissionID string, err error) error {
	return wrap(KindConfig, submissionID, err)
}

func PersistenceFailure(submissionID string, err error) error {
	return wrap(KindPersistence, submissionID, err)
}

// Kind of the first GradingError in the chain
func KindOf(err error) (Kind, bool) {
	var ge GradingError
	if errors.As(err, &ge) {
		return ge.Kind, true
	}

	return "", false
}

// Persistence failures must reach the caller instead of being folded into a batch slot
func IsFatal(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// Carries an exit code along with an error so the app can exit correctly
type ExitError struct {
	Err  error
	Code int
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d", e.Code)
	}

	return fmt.Sprintf("%d: %s", e.Code, e.Err.Error())
}

func (e ExitError) Unwrap() error {
	return e.Err
}

func ExitErrorWrap(code int, err error) error {
	return ExitError{Code: code, Err: err}
}
