//go:build no_bubbletea

package resolve

import "context"

// ResolveProgress draws a progress bar for a batch on stderr.
type ResolveProgress struct{}

func NewResolveProgress(ctx context.Context, total int) *ResolveProgress {
	return &ResolveProgress{}
}

func (rp *ResolveProgress) Start() {}

func (rp *ResolveProgress) Advance(ok bool) {}

func (rp *ResolveProgress) Done() {}

func (rp *ResolveProgress) Wait() {}
