/*
Package log provides structured logging for the engine using zerolog.

A single global Logger is configured once via Init and every subsystem
derives a child logger from it with one of the With* helpers so that
log lines carry consistent index_uid / txn_id / field_id context.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	idxLog := log.WithIndex("products")
	idxLog.Info().Uint32("docid", 42).Msg("document indexed")
*/
package log
