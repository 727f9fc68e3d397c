/*
Package settings applies configuration patches to an index in the fixed
order required for later settings to observe earlier ones, detects
whether the patch requires a reindex, and drives that reindex by
re-running L6/L7 over every stored document in primary-key order.

A Patch only ever touches the fields it sets; every other field of the
resolved Settings is left exactly as it was, and Apply is idempotent:
applying the same patch twice produces the same resolved Settings and
the same reindex decision on the second call (the second call always
resolves to "no reindex needed", since nothing actually changed).
*/
package settings
