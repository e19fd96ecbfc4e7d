// Package stats keeps a best-effort ledger of gated call outcomes.
//
// A Recorder receives one Event per finished call. MemoryRecorder keeps
// counters in process for tests and the probe command. RedisRecorder
// aggregates into Redis hashes so several processes sharing one database
// can be compared side by side.
package stats
