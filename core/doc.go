// Package core provides the foundational domain types and collaborator
// interfaces used by jobtrack. It defines the core abstractions for:
//
//   - Messages and the (owner, conversation) key that scopes every turn
//   - Intents, classifications and extracted entities
//   - Job records, statuses and the ephemeral match candidates
//   - Conversation sessions (pending slots / selections) and turn history
//   - Outcomes handed to phrasers, which never carry record ids
//   - Pluggable collaborators: record, session and history stores,
//     reasoners, enrichers and phrasers
//
// The package keeps implementation concerns (persistence, provider SDKs,
// transport) out of scope, exposing small interfaces so backends can be
// swapped in the wiring layer only.
package core
