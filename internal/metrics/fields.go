package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrUpstream = "upstream"
	AttrOpKind   = "op_kind"
	AttrOutcome  = "outcome"
)

// Delivery outcomes reported by the sync strategies.
const (
	OutcomeDelivered = "delivered"
	OutcomeQueued    = "queued"
	OutcomeDropped   = "dropped"
	OutcomeFailed    = "failed"
)
