// Package cli provides the interactive rent console.
//
// It wires configuration, the local session store, the backend API client,
// the checkout gateway and the export sink, then runs a REPL. A stored
// session is resumed on start unless it outlived the inactivity window.
//
// Tenants see their bills, pay them, file complaints and register
// occupants. Administrators manage bills, users, complaints, occupant
// verification and security deposits, and export tables as CSV or XLSX.
// Every command except the login and registration flows requires a session
// and, where it belongs to one side, the matching role.
//
// The console is started via App.Run(ctx), which blocks until the user exits.
// See Command, runREPL and describeError for details.
package cli
