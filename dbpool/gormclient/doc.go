// Package gormclient implements dbpool.Client on top of GORM and the pgx
// Postgres driver.
//
// It is meant for Postgres reached through a transaction-mode pooler such
// as PgBouncer or Supavisor, where backends are shared between clients and
// server-side prepared statements leak across sessions. Classify maps the
// resulting SQLSTATEs onto resilience error classes so a dbpool.Pool can
// reconnect and retry.
package gormclient
