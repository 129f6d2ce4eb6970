package constants

import "time"

// Queue names partition work by domain. Workers listen on these.
const (
	QueueInvoice  = "invoice"
	QueueInbound  = "inbound"
	QueueOutbound = "outbound"
	QueueOther    = "other"
)

// KnownQueues is the set reported by the queue monitor and health check.
var KnownQueues = []string{QueueInvoice, QueueInbound, QueueOutbound, QueueOther}

// Actor names identify the worker function that consumes an envelope.
const (
	ActorIssueInvoice        = "issue_invoice"
	ActorActualInvoices      = "actual_invoices"
	ActorInvoiceState        = "invoice_state"
	ActorCreateInboundOrder  = "create_inbound_order"
	ActorCreateOutboundOrder = "create_outbound_order"
	ActorTransferState       = "transfer_state"
)

// Acknowledgement states returned synchronously to the caller.
const (
	StateEnqueued = "enqueued"
	StateAccepted = "accepted"
	StateResolved = "resolved"
)

// Acknowledgement messages.
const (
	MsgInboundOrderEnqueued  = "Inbound order enqueued"
	MsgOutboundOrderEnqueued = "Outbound order enqueued"
)

// Redis key prefixes. Workers write state records under the state prefixes.
const (
	PartnerLoginKeyPrefix   = "partner"
	TransferStateKeyPrefix  = "transfer"
	InvoiceStateKeyPrefix   = "invoice"
	ActualInvoicesKeyPrefix = "actual_invoices"
	RevokedTokenKeyPrefix   = "revoked_token"
	StatePollKeyPrefix      = "state_poll"
	LoginRateLimitKeyPrefix = "rate_limit:login"
)

const (
	TokenTypeBearer         = "bearer"
	DefaultQueueNamespace   = "dramatiq"
	DefaultQueueMonitorSpec = "@every 1m"
)

// Demo partner provisioned by seeding, mirrors the legacy fixture.
const (
	DemoPartnerLogin      = "johndoe"
	DemoPartnerID         = 8
	DemoPartnerSecretHash = "$2b$12$NJIVwW8znzgKjXa6aq/bD.96nIgyLytvdZ8hYrwBj.MCdb/J7HOQ."
)

// Time-based defaults.
const (
	DefaultAccessTokenExpiry  = 5 * time.Minute
	TestShortTokenExpiry      = 2 * time.Second
	DefaultStatePollMarkerTTL = 30 * time.Second
	DefaultLoginAttemptWindow = 1 * time.Minute
	DefaultMaxLoginAttempts   = 20
	DefaultRequestTimeout     = 15 * time.Second
	ShutdownTimeout           = 10 * time.Second
)
