// Package cli provides the interactive storefront command-line client.
//
// App wires configuration, the local database, the REST transport, the
// session store and the services, then runs a REPL over them. Every command
// dispatches one store or service action and prints the result from a
// snapshot; the REPL holds no state of its own.
//
// The REPL is started with App.Run, which resumes a persisted session first
// and blocks until the user exits or input ends.
package cli
