// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with reasoning models inside jobtrack.
//
// Core goals:
//   - Unify generation behind a single channel based interface
//   - Request schema-constrained JSON output (Schema) across vendors
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so the reasoning adapter remains decoupled from vendor SDKs.
package model
