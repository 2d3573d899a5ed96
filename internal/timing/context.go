// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package timing

import (
	"context"
)

// stageKey is the context.Context key of the current Stage.
type stageKey struct{}

// NewContext returns a new context under which stages started by Start are
// recorded as top-level stages of l.
func NewContext(ctx context.Context, l *Log) context.Context {
	return context.WithValue(ctx, stageKey{}, l.root)
}

// Start starts a stage named name nested in the current stage of ctx and
// returns a context carrying the new stage. If ctx carries no Log, the
// returned stage is nil, on which End is a no-op.
//
//	ctx, st := timing.Start(ctx, "build")
//	defer st.End()
func Start(ctx context.Context, name string) (context.Context, *Stage) {
	parent, ok := ctx.Value(stageKey{}).(*Stage)
	if !ok {
		return ctx, nil
	}
	c := parent.StartChild(name)
	if c == nil {
		return ctx, nil
	}
	return context.WithValue(ctx, stageKey{}, c), c
}
