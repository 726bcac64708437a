// Package signature provides the call-site signature table.
//
// A signature maps an operation name and arity class to a composition rule
// that combines argument literalities into a result literality. Rules are
// pure and total: they never fail and they degrade to ir.Opaque whenever a
// literal result cannot be proven.
//
// # Lookup
//
// Table.Lookup(name, argc) resolves in this order:
//  1. A signature registered with Fixed(argc) for name
//  2. A signature registered with Variadic(min) for name where argc >= min
//  3. The fallback signature, which always yields ir.Opaque
//
// Lookup never returns an error. An unregistered operation is not a failure;
// it is an operation whose result cannot be claimed literal.
//
// # Immutability
//
// Tables are assembled with a Builder and frozen by Build. A built Table is
// read-only and may be shared by concurrent evaluations without locking.
package signature
