package storage

// Package storage persists transfer history so outcomes survive restarts.
//
// It currently supports:
//   - Appending transfer outcome records (completed / rejected / error)
//   - Querying recent records
//   - Pruning records past the configured retention
