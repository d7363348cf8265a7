// Package cli provides the interactive SANes y Rifas command-line client.
//
// It drives the session manager and the catalog service from a REPL. The
// session restored at start is shown in the prompt together with the number
// of unread cached notifications.
//
// Key features:
//   - Register / Login / Logout, profile view and update
//   - Browse and join SANes, list turns and payments
//   - Browse raffles, buy tickets, pay invoices
//   - Comments on SANes and raffles
//   - Notifications, served from the local cache when offline
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
