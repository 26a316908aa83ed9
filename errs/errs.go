// Package errs defines the sentinel errors shared by the telem packages.
//
// Callers should compare with errors.Is, since most errors are wrapped with
// additional context (field name, flow id, bit position) before being returned.
package errs

import "errors"

// Codec construction errors.
var (
	ErrInvalidBitWidth    = errors.New("invalid bit width")
	ErrInvalidCodecBounds = errors.New("invalid codec bounds")
	ErrInvalidValueText   = errors.New("invalid value text")
	ErrUnsupportedKind    = errors.New("unsupported value kind")
)

// Registry errors.
var (
	ErrInvalidFieldName       = errors.New("invalid field name")
	ErrFieldAlreadyRegistered = errors.New("field already registered")
	ErrCapabilityMismatch     = errors.New("field capability does not match collection")
	ErrRegistrySealed         = errors.New("registry is sealed")
	ErrFieldNotFound          = errors.New("field not found")
	ErrFieldNotWritable       = errors.New("field is not writable")
)

// Downlink errors.
var (
	ErrNoFlows           = errors.New("no flows defined")
	ErrInvalidFlowID     = errors.New("invalid flow id")
	ErrInvalidFlowPeriod = errors.New("invalid flow period")
	ErrFlowTooLarge      = errors.New("flow exceeds packet ceiling")
	ErrUnknownFlowID     = errors.New("unknown flow id")
	ErrDuplicateFlowID   = errors.New("duplicate flow id")
	ErrTruncatedFrame    = errors.New("truncated downlink frame")
)

// Uplink errors.
var (
	ErrUnknownFieldIndex   = errors.New("unknown field index")
	ErrDuplicateFieldIndex = errors.New("duplicate field index")
	ErrTruncatedPacket     = errors.New("truncated uplink packet")
	ErrExcessPadding       = errors.New("excess padding")
	ErrNonZeroPadding      = errors.New("non-zero padding")
	ErrPacketTooLarge      = errors.New("packet exceeds maximum size")
	ErrValueOutOfRange     = errors.New("value outside field range")
)

// Link errors.
var (
	ErrRecordTooLarge  = errors.New("link record too large")
	ErrTransportClosed = errors.New("transport closed")
)
