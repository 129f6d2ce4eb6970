package repositories

import (
	"fmt"

	"github.com/poofware/logistics-gateway/internal/constants"
)

// Redis key naming. Workers depend on the queue and state key shapes.

func partnerKey(login string) string {
	return fmt.Sprintf("%s:%s", constants.PartnerLoginKeyPrefix, login)
}

// queueListKey is the ordered list of message ids: {ns}:{queue}
func queueListKey(namespace, queue string) string {
	return namespace + ":" + queue
}

// queueHashKey is the hash holding envelope bodies: {ns}:{queue}.msgs
func queueHashKey(namespace, queue string) string {
	return namespace + ":" + queue + ".msgs"
}

func revokedTokenKey(tokenID string) string {
	return fmt.Sprintf("%s:%s", constants.RevokedTokenKeyPrefix, tokenID)
}

func statePollKey(stateKey string) string {
	return fmt.Sprintf("%s:%s", constants.StatePollKeyPrefix, stateKey)
}

// TransferStateKey is where a worker leaves the state of a transfer request.
func TransferStateKey(requestID string) string {
	return fmt.Sprintf("%s:%s", constants.TransferStateKeyPrefix, requestID)
}

// InvoiceStateKey is where a worker leaves the state of an invoice job.
func InvoiceStateKey(requestID string) string {
	return fmt.Sprintf("%s:%s", constants.InvoiceStateKeyPrefix, requestID)
}

// ActualInvoicesKey is where a worker leaves a partner's open invoices.
func ActualInvoicesKey(partnerID int) string {
	return fmt.Sprintf("%s:%d", constants.ActualInvoicesKeyPrefix, partnerID)
}
