// Package config loads dbgate settings from the environment.
//
// A profile (DBGATE_PROFILE) picks capacity defaults: development keeps the
// gate small so a local database is not swamped, production sizes it for a
// pooled database. Individual variables override the profile.
//
// DATABASE_URL and DBGATE_DIAG_JWT_SECRET go through strict expansion:
// ${VAR} must be set, $$ is a literal dollar, and a whole value of the form
// secretref:<provider>:<ref> is read from the env or file provider.
package config
