/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package topicmap

import (
	"fmt"

	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

// Creation of characteristics
// ===========================

/*
CreateName creates a new name for a topic. If no type is given the name gets
the default name type.
*/
func (tm *Manager) CreateName(t data.ID, typ data.ID, value string, themes []data.ID) (data.ID, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if t, err = tm.topic(t); err != nil {
		return data.NoID, err
	}

	if typ == data.NoID {
		if typ, err = tm.defaultNameType(op); err != nil {
			return data.NoID, err
		}
	} else if typ, err = tm.topic(typ); err != nil {
		return data.NoID, err
	}

	if themes, err = tm.topicList(themes); err != nil {
		return data.NoID, err
	}

	name := tm.doCreateName(op, t, typ, value, tm.scopes.scope(themes))

	return name, tm.checkNameMerge(op, name)
}

/*
defaultNameType returns the topic of the default name type. The topic is
created if it does not exist.
*/
func (tm *Manager) defaultNameType(op *operation) (data.ID, error) {
	if t := tm.ids.bySubjectIdentifier(data.PSIDefaultNameType); t != data.NoID {
		return t, nil
	}

	t := tm.doCreateTopic(op)

	return t, tm.doAddSubjectIdentifier(op, t, data.PSIDefaultNameType)
}

/*
CreateOccurrence creates a new occurrence for a topic. An empty datatype
defaults to xsd:string.
*/
func (tm *Manager) CreateOccurrence(t data.ID, typ data.ID, value string, datatype data.Locator,
	themes []data.ID) (data.ID, error) {

	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		if typ, err = tm.topic(typ); err == nil {
			if themes, err = tm.topicList(themes); err == nil {
				return tm.doCreateOccurrence(op, t, typ, literal(value, datatype), tm.scopes.scope(themes)), nil
			}
		}
	}

	return data.NoID, err
}

/*
CreateVariant creates a new variant for a name. The scope of a variant must
contain at least one theme which is not in the scope of its name.
*/
func (tm *Manager) CreateVariant(name data.ID, value string, datatype data.Locator,
	themes []data.ID) (data.ID, error) {

	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if name, err = tm.construct(name, data.KindName); err != nil {
		return data.NoID, err
	} else if themes, err = tm.topicList(themes); err != nil {
		return data.NoID, err
	} else if err = tm.checkVariantScope(name, themes); err != nil {
		return data.NoID, err
	}

	return tm.doCreateVariant(op, name, literal(value, datatype), tm.scopes.scope(themes)), nil
}

/*
checkVariantScope checks that a variant scope adds at least one theme to the
scope of its name.
*/
func (tm *Manager) checkVariantScope(name data.ID, themes []data.ID) error {
	nameScope := tm.scopes.scopeOf(name)

	for _, t := range themes {
		if !nameScope.Contains(t) {
			return nil
		}
	}

	return &util.TopicMapError{Type: util.ErrModelConstraint,
		Detail: fmt.Sprintf("Variant scope must contain a theme which is not in the scope of name %v", name)}
}

/*
literal creates a literal with a default datatype of xsd:string.
*/
func literal(value string, datatype data.Locator) data.Literal {
	if datatype == "" {
		datatype = data.XSDString
	}
	return data.Literal{Value: value, Datatype: datatype}
}

func (tm *Manager) doCreateName(op *operation, t data.ID, typ data.ID, value string, scope *data.Scope) data.ID {
	name := tm.ids.newConstruct(data.KindName, t)
	lit := literal(value, data.XSDString)

	tm.chars.add(data.KindName, t, name, lit)
	tm.typed.setType(name, typ)
	tm.scopes.setScope(name, scope)

	op.notify(data.EventNameAdded, t, name, nil)
	op.notify(data.EventTypeSet, name, typ, data.NoID)
	op.notify(data.EventScopeModified, name, scope, nil)
	op.notify(data.EventValueModified, name, lit, nil)

	return name
}

func (tm *Manager) doCreateOccurrence(op *operation, t data.ID, typ data.ID, lit data.Literal, scope *data.Scope) data.ID {
	occ := tm.ids.newConstruct(data.KindOccurrence, t)

	tm.chars.add(data.KindOccurrence, t, occ, lit)
	tm.typed.setType(occ, typ)
	tm.scopes.setScope(occ, scope)

	op.notify(data.EventOccurrenceAdded, t, occ, nil)
	op.notify(data.EventTypeSet, occ, typ, data.NoID)
	op.notify(data.EventScopeModified, occ, scope, nil)
	op.notify(data.EventValueModified, occ, lit, nil)

	return occ
}

func (tm *Manager) doCreateVariant(op *operation, name data.ID, lit data.Literal, scope *data.Scope) data.ID {
	v := tm.ids.newConstruct(data.KindVariant, name)

	tm.chars.add(data.KindVariant, name, v, lit)
	tm.scopes.setScope(v, scope)

	op.notify(data.EventVariantAdded, name, v, nil)
	op.notify(data.EventScopeModified, v, scope, nil)
	op.notify(data.EventValueModified, v, lit, nil)

	return v
}

// Modification of characteristics
// ===============================

/*
SetValue sets the value of a name, occurrence or variant. The datatype of the
construct is set to xsd:string.
*/
func (tm *Manager) SetValue(c data.ID, value string) error {
	return tm.SetDatatypedValue(c, value, data.XSDString)
}

/*
SetDatatypedValue sets the value and datatype of a name, occurrence or variant.
Names only accept xsd:string values.
*/
func (tm *Manager) SetDatatypedValue(c data.ID, value string, datatype data.Locator) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if c, err = tm.construct(c, data.KindName, data.KindOccurrence, data.KindVariant); err != nil {
		return err
	}

	lit := literal(value, datatype)

	if tm.ids.kind(c) == data.KindName && lit.Datatype != data.XSDString {
		return &util.TopicMapError{Type: util.ErrModelConstraint,
			Detail: fmt.Sprintf("Name %v can only have xsd:string values", c)}
	}

	tm.doSetValue(op, c, lit)

	if tm.ids.kind(c) == data.KindName {
		return tm.checkNameMerge(op, c)
	}

	return nil
}

func (tm *Manager) doSetValue(op *operation, c data.ID, lit data.Literal) {
	if old := tm.chars.setValue(c, lit); old != lit {
		op.notify(data.EventValueModified, c, lit, old)
	}
}

/*
SetType sets the type of a name, occurrence, association or role.
*/
func (tm *Manager) SetType(c data.ID, typ data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if c, err = tm.construct(c, data.KindName, data.KindOccurrence, data.KindAssociation, data.KindRole); err == nil {
		if typ, err = tm.topic(typ); err == nil {
			tm.doSetType(op, c, typ)

			if tm.ids.kind(c) == data.KindName {
				err = tm.checkNameMerge(op, c)
			}
		}
	}

	return err
}

func (tm *Manager) doSetType(op *operation, c data.ID, typ data.ID) {
	if old := tm.typed.typeOf(c); old != typ {
		tm.typed.setType(c, typ)
		op.notify(data.EventTypeSet, c, typ, old)
	}
}

/*
AddTheme adds a theme to the scope of a scoped construct.
*/
func (tm *Manager) AddTheme(c data.ID, theme data.ID) error {
	return tm.modifyScope(c, theme, func(s *data.Scope, theme data.ID) []data.ID {
		return s.Union([]data.ID{theme})
	})
}

/*
RemoveTheme removes a theme from the scope of a scoped construct. The scope of
a variant must not become empty.
*/
func (tm *Manager) RemoveTheme(c data.ID, theme data.ID) error {
	return tm.modifyScope(c, theme, func(s *data.Scope, theme data.ID) []data.ID {
		return s.Without(theme)
	})
}

/*
modifyScope changes the scope of a scoped construct.
*/
func (tm *Manager) modifyScope(c data.ID, theme data.ID, f func(*data.Scope, data.ID) []data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if c, err = tm.construct(c, data.KindName, data.KindOccurrence, data.KindVariant, data.KindAssociation); err != nil {
		return err
	} else if theme, err = tm.topic(theme); err != nil {
		return err
	}

	themes := f(tm.scopes.scopeOf(c), theme)

	if tm.ids.kind(c) == data.KindVariant {
		if err = tm.checkVariantScope(tm.ids.parent(c), themes); err != nil {
			return err
		}
	}

	tm.doSetScope(op, c, tm.scopes.scope(themes))

	if tm.ids.kind(c) == data.KindName {
		err = tm.checkNameMerge(op, c)
	}

	return err
}

func (tm *Manager) doSetScope(op *operation, c data.ID, scope *data.Scope) {
	if old := tm.scopes.scopeOf(c); old != scope {
		tm.scopes.setScope(c, scope)
		op.notify(data.EventScopeModified, c, scope, old)
	}
}

/*
CreateScope returns the interned scope object for a set of themes.
*/
func (tm *Manager) CreateScope(themes []data.ID) (*data.Scope, error) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	themes, err := tm.topicList(themes)
	if err != nil {
		return nil, err
	}

	return tm.scopes.scope(themes), nil
}

// Queries
// =======

/*
Names returns the names of a topic.
*/
func (tm *Manager) Names(t data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.chars.namesOf(tm.ids.resolve(t))
}

/*
Occurrences returns the occurrences of a topic.
*/
func (tm *Manager) Occurrences(t data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.chars.occurrencesOf(tm.ids.resolve(t))
}

/*
Variants returns the variants of a name.
*/
func (tm *Manager) Variants(name data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.chars.variantsOf(name)
}

/*
Value returns the value of a name, occurrence or variant.
*/
func (tm *Manager) Value(c data.ID) string {
	return tm.Literal(c).Value
}

/*
Datatype returns the datatype of a name, occurrence or variant.
*/
func (tm *Manager) Datatype(c data.ID) data.Locator {
	return tm.Literal(c).Datatype
}

/*
Literal returns the value and datatype of a name, occurrence or variant.
*/
func (tm *Manager) Literal(c data.ID) data.Literal {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.chars.value(c)
}

/*
Type returns the type of a name, occurrence, association or role.
*/
func (tm *Manager) Type(c data.ID) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.typed.typeOf(c)
}

/*
Scope returns the scope of a name, occurrence, variant or association.
*/
func (tm *Manager) Scope(c data.ID) *data.Scope {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.scopes.scopeOf(c)
}

/*
EffectiveScope returns the scope of a construct joined with the scope of its
parent. Only variants have a parent with a scope.
*/
func (tm *Manager) EffectiveScope(c data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	s := tm.scopes.scopeOf(c)

	if tm.ids.kind(c) == data.KindVariant {
		return s.Union(tm.scopes.scopeOf(tm.ids.parent(c)).Themes())
	}

	return s.Themes()
}

/*
TypedConstructs returns all constructs of a given kind which have a given type.
*/
func (tm *Manager) TypedConstructs(typ data.ID, kind data.Kind) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.filterKind(tm.typed.typedBy(tm.ids.resolve(typ)), kind)
}

/*
ConstructTypes returns all topics which are used as type for constructs of a
given kind.
*/
func (tm *Manager) ConstructTypes(kind data.Kind) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var res []data.ID

	for _, c := range tm.ids.all(kind) {
		res = append(res, tm.typed.typeOf(c))
	}

	return data.SortedIDs(res)
}

/*
ScopedConstructs returns all constructs of a given kind which are in a given scope.
*/
func (tm *Manager) ScopedConstructs(s *data.Scope, kind data.Kind) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.filterKind(tm.scopes.constructsIn(s), kind)
}

/*
Scopes returns all scopes which are used by constructs of a given kind.
*/
func (tm *Manager) Scopes(kind data.Kind) []*data.Scope {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var res []*data.Scope

	for _, s := range tm.scopes.scopesInUse() {
		if len(tm.filterKind(tm.scopes.constructsIn(s), kind)) > 0 {
			res = append(res, s)
		}
	}

	return res
}

/*
ScopesWithTheme returns all scopes in use which contain a given theme.
*/
func (tm *Manager) ScopesWithTheme(theme data.ID) []*data.Scope {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.scopes.scopesWithTheme(tm.ids.resolve(theme))
}

/*
filterKind filters a list of constructs by kind.
*/
func (tm *Manager) filterKind(ids []data.ID, kind data.Kind) []data.ID {
	res := make([]data.ID, 0, len(ids))

	for _, id := range ids {
		if tm.ids.kind(id) == kind {
			res = append(res, id)
		}
	}

	return res
}
