// Copyright 2024 The cauchy Authors
// This file is part of the cauchy library.
//
// The cauchy library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cauchy library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cauchy library. If not, see <http://www.gnu.org/licenses/>.

package consensus

import (
	"math/big"

	"golang.org/x/sync/errgroup"
)

// CalculateWinnerParallel is equivalent to CalculateWinner but scores every
// candidate concurrently, which pays off once the entry count (arena
// sample size) makes the O(n^2) Hamming-distance pass worth spreading
// across goroutines.
func CalculateWinnerParallel(entries []Entry) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}

	scores := make([]*big.Int, len(entries))
	var g errgroup.Group
	for i := range entries {
		i := i
		g.Go(func() error {
			scores[i] = score(entries[i], entries)
			return nil
		})
	}
	// score never returns an error; the errgroup is used purely for its
	// goroutine fan-out/fan-in, not error propagation.
	_ = g.Wait()

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Cmp(scores[best]) < 0 {
			best = i
		}
	}
	return best, true
}
