// Package cli is the interactive terminal front end of the bookshelf client.
//
// It wires configuration, durable storage, the backend API and the client
// components (session, auth screens, catalog, verification gate, cart,
// recommendations, profile, admin form) onto one loop.Loop. Lines typed by
// the user are read off the loop; any extra form input a command needs is
// collected there too, and the command itself runs on the loop.
// Component changes are reported back by subscriptions that print what
// changed.
//
// Typical flow: the stored credential is restored and, when there is one, the
// initial catalog query is issued; then the REPL starts. Signed out, only the
// auth commands are open. At the first prompt after sign-in the user is asked
// once whether to resume a cart left by the previous run. App.Run blocks
// until the user exits, input ends or its context is cancelled.
package cli
