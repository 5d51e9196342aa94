// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bridge implements Identity Bridge: the verified,
// persistent signature -> work mapping an operator confirms out of the
// Discovery Queue, and its revocation.
//
// Link is transactional: insert-or-update the Bridge row, back-fill the
// matching BroadcastLogs, and delete the DiscoveryQueueItem, all in one
// commit. After the commit, an AuditEntry capable of undo is handed to
// the asynchronous audit logger; it is not part of the transaction.
// Revoke flips
// is_revoked without reversing the back-fill (this: "historical logs
// keep their decision").
package bridge
