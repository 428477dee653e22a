// Package session houses the in-process implementations of core.SessionStore
// and core.HistoryStore. The interfaces themselves (and the Session struct)
// live in the core package so higher level packages (engine, runner) do not
// depend on concrete storage.
//
// Durable backends live under store/ (postgres, supabase); only the wiring
// layer decides which implementation to instantiate.
package session
