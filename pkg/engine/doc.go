/*
Package engine wires every lower layer (schema, document store, tokenizer,
transform, inverted index, facet tree, settings, query expansion, ranked
evaluator) into the single library surface §6 describes: an Index opened
against one on-disk directory, a write path (add/delete/clear documents,
update settings) and a read path (search, get documents).

kv.DB only exposes closure-style Update/View transactions so bbolt itself
never leaks past pkg/kv; Index's methods each wrap exactly one such
closure rather than handing the caller a long-lived Txn/RoTxn object to
commit or abort later, see DESIGN.md's Open Question decision on this.
*/
package engine
