// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package ingest

import (
	"context"
	"math/rand"

	"rirdb-ingest/pkg/model"
)

// Dispatch shuffles blocks (breaking the locality of parent-key
// collisions between workers, per spec.md §4.5 step 4) and feeds them
// over a bounded channel. The source enqueues N sentinel values after
// the block list to tell worker processes to exit; a goroutine-based
// implementation gets that for free by closing the channel once every
// block has been sent, so no sentinel value is needed here.
func Dispatch(ctx context.Context, blocks []model.Block, queueSize int, seed int64) <-chan model.Block {
	shuffled := make([]model.Block, len(blocks))
	copy(shuffled, blocks)
	rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	out := make(chan model.Block, queueSize)
	go func() {
		defer close(out)
		for _, b := range shuffled {
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
