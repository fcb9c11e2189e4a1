// Copyright © 2023-2026 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package maps

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/zeebo/wyhash"
)

// PermutedMaps generates n random maps, each is a shuffle of all fragments
// of the given maps, so they have the same total size.
// Each map has its own random source seeded by hashing its name with the seed,
// so the result only depends on the seed, not the number of threads.
func PermutedMaps(maps []*Map, n int, seed uint64, threads int) []*Map {
	if n <= 0 {
		return nil
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	var total int
	for _, m := range maps {
		total += len(m.Frags)
	}
	all := make([]int, 0, total)
	for _, m := range maps {
		all = append(all, m.Frags...)
	}

	permuted := make([]*Map, n)
	var wg sync.WaitGroup
	tokens := make(chan int, threads)
	for i := 0; i < n; i++ {
		tokens <- 1
		wg.Add(1)
		go func(i int) {
			defer func() {
				wg.Done()
				<-tokens
			}()

			name := fmt.Sprintf("random_map_%d", i)
			r := rand.New(rand.NewSource(int64(wyhash.HashString(name, seed))))

			frags := make([]int, len(all))
			copy(frags, all)
			r.Shuffle(len(frags), func(a, b int) { frags[a], frags[b] = frags[b], frags[a] })

			permuted[i] = NewMap(name, frags)
		}(i)
	}
	wg.Wait()

	return permuted
}

// FragsOf returns fragments of maps.
func FragsOf(maps []*Map) [][]int {
	frags := make([][]int, len(maps))
	for i, m := range maps {
		frags[i] = m.Frags
	}
	return frags
}
