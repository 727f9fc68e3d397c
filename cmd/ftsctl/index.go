package main

import (
	"github.com/cuemby/ftscore/pkg/engine"
)

func openIndex(uid string) (*engine.Index, error) {
	return engine.OpenWithParams(cfg.DataDir, uid, cfg.InvindexParams(), cfg.TransformRunSize)
}
