// Package warehouse loads the canonical work set of client accounts from the
// relational database. Oracle (go-ora, pure Go) is the production driver;
// SQLite serves local runs and tests.
package warehouse
