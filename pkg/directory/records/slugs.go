// Annuaire Core
// Copyright (c) 2026 The Annuaire Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Annuaire Core.
//
// Annuaire Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Annuaire Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Annuaire Core.  If not, see <http://www.gnu.org/licenses/>.

package records

import (
	"sort"
	"strconv"

	"github.com/annuaire-echecs/annuaire-core/pkg/directory/normalize"
)

// fallbackSlug replaces an empty slug before collisions are resolved.
const fallbackSlug = "fiche"

// SlugCollision describes one base slug shared by several records.
type SlugCollision struct {
	Base  string   `json:"base"`
	IDs   []string `json:"ids"`
	Slugs []string `json:"slugs"`
}

type slugKey struct {
	name    string
	commune string
	postal  string
	id      string
	index   int
}

func (a slugKey) less(b slugKey) bool {
	switch {
	case a.name != b.name:
		return a.name < b.name
	case a.commune != b.commune:
		return a.commune < b.commune
	case a.postal != b.postal:
		return a.postal < b.postal
	case a.id != b.id:
		return a.id < b.id
	default:
		return a.index < b.index
	}
}

// EnsureUniqueSlugs makes every slug in recs unique. Records sharing a slug
// are sorted by name, commune, postal code and ID; the first keeps the slug
// and the others get "-2", "-3", … skipping suffixes already taken. The
// returned collisions are ordered by base slug.
func EnsureUniqueSlugs(recs []Record) []SlugCollision {
	groups := make(map[string][]int)
	var order []string
	used := make(map[string]struct{}, len(recs))

	for i := range recs {
		if recs[i].Slug == "" {
			recs[i].Slug = fallbackSlug
		}
		slug := recs[i].Slug
		if _, ok := groups[slug]; !ok {
			order = append(order, slug)
		}
		groups[slug] = append(groups[slug], i)
		used[slug] = struct{}{}
	}

	sort.Strings(order)

	var collisions []SlugCollision
	for _, base := range order {
		members := groups[base]
		if len(members) < 2 {
			continue
		}

		keys := make([]slugKey, len(members))
		for j, idx := range members {
			keys[j] = slugKey{
				name:    normalize.ForSearch(recs[idx].Name),
				commune: normalize.ForSearch(recs[idx].Commune),
				postal:  recs[idx].PostalCode,
				id:      recs[idx].ID,
				index:   idx,
			}
		}
		sort.Slice(keys, func(a, b int) bool { return keys[a].less(keys[b]) })

		collision := SlugCollision{Base: base}
		suffix := 2
		for j, k := range keys {
			if j > 0 {
				candidate := base + "-" + strconv.Itoa(suffix)
				for {
					if _, taken := used[candidate]; !taken {
						break
					}
					suffix++
					candidate = base + "-" + strconv.Itoa(suffix)
				}
				used[candidate] = struct{}{}
				recs[k.index].Slug = candidate
				suffix++
			}
			collision.IDs = append(collision.IDs, recs[k.index].ID)
			collision.Slugs = append(collision.Slugs, recs[k.index].Slug)
		}
		collisions = append(collisions, collision)
	}
	return collisions
}
