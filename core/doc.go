// Package core contains the dispatcher's process-wide contracts.
//
// Allowed here:
// - the command registry and its invocation contract
// - key binding tables and key name normalisation
// - built-in command ids and the messages the front-end consumes
//
// Not allowed here:
// - access to the layout tree or the script engine (see internal/commands)
// - rendering
package core
