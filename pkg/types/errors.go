package types

import "errors"

// Sentinel errors for every error kind named by the design: input errors,
// schema errors, query errors, runtime errors and consistency errors.
// Layers wrap these with fmt.Errorf("...: %w", ErrX) so callers can still
// match the kind with errors.Is while getting a message with context.
var (
	// Input errors (L5 transform)
	ErrMalformedInput                    = errors.New("malformed input")
	ErrUnsupportedFormat                 = errors.New("unsupported input format")
	ErrMissingPrimaryKeyValue             = errors.New("missing primary key value")
	ErrInvalidPrimaryKeyType              = errors.New("invalid primary key type")
	ErrInconsistentPrimaryKeyAcrossBatch = errors.New("inconsistent primary key across batch")
	ErrPayloadTooLarge                    = errors.New("payload too large")

	// Schema errors (L2)
	ErrPrimaryKeyImmutable    = errors.New("primary key is immutable once documents exist")
	ErrFieldLimitReached      = errors.New("field limit reached")
	ErrInvalidFieldName       = errors.New("invalid field name")
	ErrInvalidMinTypoWordLen  = errors.New("invalid minimum typo word length")

	// Query errors (L9/L10)
	ErrInvalidFilter              = errors.New("invalid filter")
	ErrInvalidSort                = errors.New("invalid sort")
	ErrEmptyFilter                = errors.New("empty filter")
	ErrFilterFieldNotFilterable   = errors.New("field is not filterable")
	ErrSortFieldNotSortable       = errors.New("field is not sortable")
	ErrDistinctFieldNotFilterable = errors.New("distinct field is not filterable")

	// Runtime errors
	ErrBackend    = errors.New("backend store error")
	ErrIO         = errors.New("i/o error")
	ErrOutOfDisk  = errors.New("out of disk space")
	ErrCancelled  = errors.New("cancelled")
	ErrTimeout    = errors.New("timeout")

	// Consistency errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrIndexNotFound    = errors.New("index not found")
)
