// Airwave - Radio Broadcast Log Reconciliation
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models defines the entities of the library knowledge base and the
// reconciliation pipeline: Artist, Work, Recording, LibraryFile, Station,
// BroadcastLog, DiscoveryQueueItem, IdentityBridge, ArtistAlias,
// ProposedSplit, and the resolver's policy tables.
package models
