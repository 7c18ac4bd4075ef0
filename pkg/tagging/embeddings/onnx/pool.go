// Omnisonic
// Copyright (c) 2026 The Omnisonic Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Omnisonic.
//
// Omnisonic is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Omnisonic is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Omnisonic.  If not, see <http://www.gnu.org/licenses/>.

package onnx

import "math"

// truncate converts tokenizer output to int64 tensors, keeping at most
// maxLen positions. A cut sequence keeps its final (separator) token.
func truncate(ids, mask, types []int, maxLen int) (outIDs, outMask, outTypes []int64) {
	n := len(ids)
	if len(mask) < n {
		n = len(mask)
	}
	if len(types) < n {
		n = len(types)
	}
	cut := n > maxLen
	if cut {
		n = maxLen
	}
	outIDs = make([]int64, n)
	outMask = make([]int64, n)
	outTypes = make([]int64, n)
	for i := range n {
		outIDs[i] = int64(ids[i])
		outMask[i] = int64(mask[i])
		outTypes[i] = int64(types[i])
	}
	if cut && n > 0 {
		last := len(ids) - 1
		outIDs[n-1] = int64(ids[last])
		outMask[n-1] = int64(mask[last])
		outTypes[n-1] = int64(types[last])
	}
	return outIDs, outMask, outTypes
}

// meanPool averages the hidden states of unmasked positions of a single
// sequence. hidden is flat [seqLen*dim].
func meanPool(hidden []float32, mask []int64, dim int64) []float32 {
	out := make([]float32, dim)
	var count float32
	for s, m := range mask {
		if m != 1 {
			continue
		}
		off := int64(s) * dim
		if off+dim > int64(len(hidden)) {
			break
		}
		for d := range dim {
			out[d] += hidden[off+d]
		}
		count++
	}
	if count == 0 {
		return out
	}
	inv := 1 / count
	for d := range out {
		out[d] *= inv
	}
	return out
}

func l2Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
