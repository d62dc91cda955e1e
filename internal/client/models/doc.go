// Package models defines the catalog, user and query types exchanged with the
// bookshelf backend and kept in client state.
package models
