/*
Package kv is the L1 KV Store Adapter: a typed, transactional view over a
bbolt file that the rest of the engine treats as its only durable surface.

Every caller-visible entity — schema, documents, postings, facet nodes,
settings — is ultimately a key/value pair in one of the named logical
databases declared at Open. Keys are always constructed so that their
byte-lexicographic order matches their logical order (big-endian integers,
length-prefixed strings), which is what lets range and prefix iteration
stand in for SQL-style range scans.

At most one write transaction (Update) is ever in flight; any number of
read transactions (View) may run concurrently with it and with each other
against a stable snapshot taken when they start. A commit becomes visible
to every read transaction opened after it returns; transactions opened
before the commit keep seeing the pre-commit snapshot for their entire
lifetime.
*/
package kv
