/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package index

import (
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
ScopedIndex answers queries about the scopes of names, occurrences, variants
and associations. The scope of a variant is its own scope without the scope of
its name.
*/
type ScopedIndex struct {
	*baseIndex
}

/*
NewScopedIndex creates a new scoped index.
*/
func NewScopedIndex(tm *topicmap.Manager) *ScopedIndex {
	idx := &ScopedIndex{}

	idx.baseIndex = newBaseIndex("scoped", tm, []data.EventKind{
		data.EventScopeModified, data.EventNameRemoved, data.EventOccurrenceRemoved,
		data.EventVariantRemoved, data.EventAssociationRemoved,
	}, idx.invalidateScopes, CacheScopes, CacheScopedConstructs, CacheThemedConstructs, CacheThemes)

	return idx
}

/*
Scopes returns all scopes which are used by constructs of a given kind.
*/
func (idx *ScopedIndex) Scopes(kind data.Kind) ([]*data.Scope, error) {
	return idx.scopeResult(CacheScopes, cacheKey(kind), func() []*data.Scope {
		return idx.tm.Scopes(kind)
	})
}

/*
ScopedConstructs returns all constructs of a given kind which are in a given scope.
*/
func (idx *ScopedIndex) ScopedConstructs(kind data.Kind, scope *data.Scope) (*Result, error) {
	return idx.result(CacheScopedConstructs, cacheKey(kind, scope.ID()), func() []data.ID {
		return idx.tm.ScopedConstructs(scope, kind)
	})
}

/*
ConstructsByTheme returns all constructs of a given kind whose scope contains
a given theme. NoID as theme returns all constructs in the unconstrained scope.
*/
func (idx *ScopedIndex) ConstructsByTheme(kind data.Kind, theme data.ID) (*Result, error) {
	theme = idx.tm.Resolve(theme)

	return idx.result(CacheThemedConstructs, cacheKey(kind, theme), func() []data.ID {
		if theme == data.NoID {
			return idx.tm.ScopedConstructs(data.NewScope(nil), kind)
		}

		var res []data.ID

		for _, s := range idx.tm.ScopesWithTheme(theme) {
			res = append(res, idx.tm.ScopedConstructs(s, kind)...)
		}

		return res
	})
}

/*
ConstructsByThemes returns all constructs of a given kind whose scope contains
any of the given themes. If matchAll is set then the scope must contain all
given themes.
*/
func (idx *ScopedIndex) ConstructsByThemes(kind data.Kind, themes []data.ID, matchAll bool) (*Result, error) {
	counts := make(map[data.ID]int)

	themes = data.SortedIDs(themes)

	for _, theme := range themes {
		res, err := idx.ConstructsByTheme(kind, theme)
		if err != nil {
			return nil, err
		}

		for _, c := range res.res.ids {
			counts[c]++
		}
	}

	var ids []data.ID

	for c, count := range counts {
		if !matchAll || count == len(themes) {
			ids = append(ids, c)
		}
	}

	return &Result{idx.tm, newCachedResult(data.SortedIDs(ids))}, nil
}

/*
Themes returns all topics which are used as themes by constructs of a given kind.
*/
func (idx *ScopedIndex) Themes(kind data.Kind) (*Result, error) {
	return idx.result(CacheThemes, cacheKey(kind), func() []data.ID {
		var res []data.ID

		for _, s := range idx.tm.Scopes(kind) {
			res = append(res, s.Themes()...)
		}

		return res
	})
}

/*
invalidateScopes invalidates all cached results for the old and the new scope
of a changed construct.
*/
func (idx *ScopedIndex) invalidateScopes(tm *topicmap.Manager, event *data.Event) {
	var kind data.Kind
	var scopes []string
	var themes [][]data.ID

	if event.Kind == data.EventScopeModified {
		kind = event.ContextKind

		for _, v := range []interface{}{event.NewValue, event.OldValue} {
			if s, ok := v.(*data.Scope); ok && s != nil {
				scopes = append(scopes, s.ID())
				themes = append(themes, s.Themes())
			}
		}

	} else if snap := removedSnapshot(event); snap != nil {
		kind = snap.Kind
		scopes = append(scopes, snap.ScopeKey())
		themes = append(themes, snap.Themes)

	} else {
		return
	}

	scopeKeys := make([]string, 0, len(scopes))
	for _, s := range scopes {
		scopeKeys = append(scopeKeys, cacheKey(kind, s))
	}

	var themeKeys []string
	for _, ts := range themes {
		if len(ts) == 0 {
			themeKeys = append(themeKeys, cacheKey(kind, data.NoID))
		}
		for _, t := range ts {
			themeKeys = append(themeKeys, cacheKey(kind, t))
		}
	}

	c := idx.cache

	c.invalidate(CacheScopes, cacheKey(kind))
	c.invalidate(CacheScopedConstructs, scopeKeys...)
	c.invalidate(CacheThemedConstructs, themeKeys...)
	c.invalidate(CacheThemes, cacheKey(kind))
}
