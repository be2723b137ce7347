/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mesh

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gridwarp/internal/domain"
)

// Rules holds per-column and per-row subdivision multipliers keyed by
// logical division index. Absent keys mean a multiplier of 1.
type Rules struct {
	Cols map[int]int
	Rows map[int]int
}

// NewRules returns empty rules.
func NewRules() Rules { return Rules{Cols: map[int]int{}, Rows: map[int]int{}} }

// Col returns the multiplier of logical column i.
func (r Rules) Col(i int) int { return lookup(r.Cols, i) }

// Row returns the multiplier of logical row i.
func (r Rules) Row(i int) int { return lookup(r.Rows, i) }

func lookup(m map[int]int, i int) int {
	if v, ok := m[i]; ok && v > 0 {
		return v
	}
	return 1
}

// String renders the rules in canonical form: columns before rows, ascending index.
func (r Rules) String() string {
	var parts []string
	emit := func(axis string, m map[int]int) {
		keys := make([]int, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s%d:%d", axis, k, m[k]))
		}
	}
	emit("C", r.Cols)
	emit("R", r.Rows)
	return strings.Join(parts, ",")
}

var reToken = regexp.MustCompile(`^(?i)([cr])\s*(\d+)\s*:\s*(\d+)$`)

// ParseRules parses a comma separated rule string such as "C1:4, r3:2".
// Tokens that do not match, carry a non-positive multiplier, or address an
// index outside [0, base) of their axis are skipped. Base counts are clamped
// like GridConfig.Sanitized. Later tokens win over earlier ones for the same
// index.
func ParseRules(rule string, baseCols, baseRows int) Rules {
	r := NewRules()
	cfg := domain.GridConfig{BaseCols: baseCols, BaseRows: baseRows}.Sanitized()
	baseCols, baseRows = cfg.BaseCols, cfg.BaseRows
	if strings.TrimSpace(rule) == "" {
		return r
	}
	for _, tok := range strings.Split(rule, ",") {
		m := reToken.FindStringSubmatch(strings.TrimSpace(tok))
		if m == nil {
			continue
		}
		idx, err1 := strconv.Atoi(m[2])
		mult, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil || mult <= 0 {
			continue
		}
		switch strings.ToUpper(m[1]) {
		case "C":
			if idx < baseCols {
				r.Cols[idx] = mult
			}
		case "R":
			if idx < baseRows {
				r.Rows[idx] = mult
			}
		}
	}
	return r
}
