package services

import "errors"

// Sentinel errors of the billing workflow. Handlers map them to HTTP
// statuses with errors.Is.
var (
	// ErrNotFound: invoice, client or intervention missing.
	ErrNotFound = errors.New("not_found")
	// ErrNotEditable: item/date edits attempted outside proforma+draft.
	ErrNotEditable = errors.New("invoice_not_editable")
	// ErrAlreadyFinal: validate called on an already validated invoice.
	ErrAlreadyFinal = errors.New("invoice_already_final")
	// ErrInvalidState: transition preconditions not met (e.g. payment on a draft).
	ErrInvalidState = errors.New("invalid_invoice_state")
	// ErrAlreadySent: dispatch short-circuit; callers should treat as
	// success-equivalent, the invoice reached the client earlier.
	ErrAlreadySent = errors.New("invoice_already_sent")
	// ErrNumberCollision: numbering uniqueness not established after retries.
	ErrNumberCollision = errors.New("invoice_number_collision")
	// ErrDispatchInProgress: another send holds the claim flag right now.
	ErrDispatchInProgress = errors.New("dispatch_in_progress")
	// ErrDownstream: rendering/storage/delivery provider failure.
	ErrDownstream = errors.New("downstream_failure")
	// ErrNotBillable: intervention is not in completed status.
	ErrNotBillable = errors.New("intervention_not_billable")
)
