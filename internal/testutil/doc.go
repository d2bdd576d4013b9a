// Package testutil contains helper builders and scripted collaborators used
// across tests to reduce boilerplate when constructing messages, actors and
// decision engines. These helpers are intentionally minimal and are not
// intended for production usage.
package testutil
