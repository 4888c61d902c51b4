// Package dom defines the contract between view objects and whatever engine
// actually holds the page: an in-memory HTML tree (htmldom), a live browser
// (roddom), or a caller supplied implementation. View objects only ever talk
// to a Scope or a Node and never inspect the engine behind it.
//
// Strict lookups (FindOne) fail with a *QueryError wrapping ErrNotFound or
// ErrAmbiguous. Lenient lookups (FindFirst) return a nil Node and a nil error
// when nothing matches. Any waiting for asynchronous rendering belongs to the
// implementation.
package dom
