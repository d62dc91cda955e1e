// Package storage is the client's durable key/value storage: the place the
// session credential and the cart snapshot survive restarts.
//
// Three backends implement Store:
//
//   - SQLiteStore keeps a kv table in a local SQLite file (modernc.org/sqlite),
//     schema managed by goose migrations embedded in internal/client/migrations.
//   - RedisStore keeps prefixed keys in Redis, for kiosk-style deployments where
//     the storage must outlive the machine running the client.
//   - MemoryStore keeps nothing across restarts.
//
// A missing key is not an error: Get and Take return (nil, nil).
package storage
