package sellerverify

import "errors"

var (
	// ErrVerificationFailed rejects the applicant: no student id could be
	// read or the evidence scored too low. It is a user-facing outcome.
	ErrVerificationFailed = errors.New("id verification failed")

	// ErrExtractionTimeout means OCR or QR decoding ran past its deadline.
	// The attempt may be retried.
	ErrExtractionTimeout = errors.New("document extraction timed out")
)

func Retryable(err error) bool {
	return errors.Is(err, ErrExtractionTimeout)
}
