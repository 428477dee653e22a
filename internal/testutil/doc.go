// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing messages, sessions and seeded
// record stores, plus a failure injecting RecordStore wrapper. They are not
// intended for production usage.
package testutil
