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

// Topic creation
// ==============

/*
CreateTopic creates a new topic without any identifiers.
*/
func (tm *Manager) CreateTopic() (data.ID, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	return tm.doCreateTopic(op), nil
}

/*
CreateTopicBySubjectIdentifier returns the topic with a given subject identifier.
If no such topic exists but a topic has the locator as item identifier then the
locator is added to this topic as subject identifier. Otherwise a new topic is
created.
*/
func (tm *Manager) CreateTopicBySubjectIdentifier(loc data.Locator) (data.ID, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if t := tm.ids.bySubjectIdentifier(loc); t != data.NoID {
		return t, nil
	}

	t := tm.ids.byItemIdentifier(loc)

	if t != data.NoID && tm.ids.kind(t) != data.KindTopic {
		return data.NoID, tm.identityConflict(loc, t)
	} else if t == data.NoID {
		t = tm.doCreateTopic(op)
	}

	return t, tm.doAddSubjectIdentifier(op, t, loc)
}

/*
CreateTopicBySubjectLocator returns the topic with a given subject locator or
creates a new one.
*/
func (tm *Manager) CreateTopicBySubjectLocator(loc data.Locator) (data.ID, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if t := tm.ids.bySubjectLocator(loc); t != data.NoID {
		return t, nil
	}

	t := tm.doCreateTopic(op)

	return t, tm.doAddSubjectLocator(op, t, loc)
}

/*
CreateTopicByItemIdentifier returns the topic with a given item identifier.
If no such topic exists but a topic has the locator as subject identifier then
the locator is added to this topic as item identifier. Otherwise a new topic is
created. Fails if the locator identifies a construct which is not a topic.
*/
func (tm *Manager) CreateTopicByItemIdentifier(loc data.Locator) (data.ID, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if c := tm.ids.byItemIdentifier(loc); c != data.NoID {
		if tm.ids.kind(c) != data.KindTopic {
			return data.NoID, tm.identityConflict(loc, c)
		}
		return c, nil
	}

	t := tm.ids.bySubjectIdentifier(loc)

	if t == data.NoID {
		t = tm.doCreateTopic(op)
	}

	return t, tm.doAddItemIdentifier(op, t, loc)
}

/*
doCreateTopic creates a new topic.
*/
func (tm *Manager) doCreateTopic(op *operation) data.ID {
	t := tm.ids.newConstruct(data.KindTopic, tm.tmID)

	op.notify(data.EventTopicAdded, tm.tmID, t, nil)

	return t
}

/*
identityConflict returns an identity conflict error.
*/
func (tm *Manager) identityConflict(loc data.Locator, owner data.ID) error {
	return &util.TopicMapError{Type: util.ErrIdentityConflict,
		Detail: fmt.Sprintf("Locator %v is already used by %v %v", loc, tm.ids.kind(owner), owner)}
}

// Identifiers
// ===========

/*
AddItemIdentifier adds an item identifier to a construct. If the construct is
a topic and the locator is already used by another topic (as item identifier
or subject identifier) then both topics are merged.
*/
func (tm *Manager) AddItemIdentifier(c data.ID, loc data.Locator) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if c, err = tm.construct(c); err == nil {
		err = tm.doAddItemIdentifier(op, c, loc)
	}

	return err
}

/*
RemoveItemIdentifier removes an item identifier from a construct.
*/
func (tm *Manager) RemoveItemIdentifier(c data.ID, loc data.Locator) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if c, err = tm.construct(c); err == nil && tm.ids.removeItemIdentifier(c, loc) {
		op.notify(data.EventItemIdentifierRemoved, c, nil, loc)
	}

	return err
}

/*
AddSubjectIdentifier adds a subject identifier to a topic. If the locator is
already used by another topic (as subject identifier or item identifier) then
both topics are merged.
*/
func (tm *Manager) AddSubjectIdentifier(t data.ID, loc data.Locator) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		err = tm.doAddSubjectIdentifier(op, t, loc)
	}

	return err
}

/*
RemoveSubjectIdentifier removes a subject identifier from a topic.
*/
func (tm *Manager) RemoveSubjectIdentifier(t data.ID, loc data.Locator) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil && tm.ids.removeSubjectIdentifier(t, loc) {
		op.notify(data.EventSubjectIdentifierRemoved, t, nil, loc)
	}

	return err
}

/*
AddSubjectLocator adds a subject locator to a topic. If the locator is already
used by another topic then both topics are merged.
*/
func (tm *Manager) AddSubjectLocator(t data.ID, loc data.Locator) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		err = tm.doAddSubjectLocator(op, t, loc)
	}

	return err
}

/*
RemoveSubjectLocator removes a subject locator from a topic.
*/
func (tm *Manager) RemoveSubjectLocator(t data.ID, loc data.Locator) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil && tm.ids.removeSubjectLocator(t, loc) {
		op.notify(data.EventSubjectLocatorRemoved, t, nil, loc)
	}

	return err
}

/*
mergeOnCollision merges a topic which uses a locator into the topic which
should receive the locator.
*/
func (tm *Manager) mergeOnCollision(op *operation, target data.ID, source data.ID, loc data.Locator) error {
	if !tm.features.AutomaticMerging {
		return tm.identityConflict(loc, source)
	}

	LogDebug(fmt.Sprintf("Locator %v causes merge of topic %v into %v", loc, source, target))

	return tm.doMergeTopics(op, target, source)
}

/*
doAddItemIdentifier adds an item identifier to a construct.
*/
func (tm *Manager) doAddItemIdentifier(op *operation, c data.ID, loc data.Locator) error {
	existing := tm.ids.byItemIdentifier(loc)

	if existing == c {
		return nil
	}

	isTopic := tm.ids.kind(c) == data.KindTopic

	if existing != data.NoID {
		if !isTopic || tm.ids.kind(existing) != data.KindTopic {
			return tm.identityConflict(loc, existing)
		}

		// The merge moves the identifier to the target

		return tm.mergeOnCollision(op, c, existing, loc)
	}

	if isTopic {
		if other := tm.ids.bySubjectIdentifier(loc); other != data.NoID && other != c {
			if err := tm.mergeOnCollision(op, c, other, loc); err != nil {
				return err
			}
		}
	}

	tm.ids.addItemIdentifier(c, loc)
	op.notify(data.EventItemIdentifierAdded, c, loc, nil)

	return nil
}

/*
doAddSubjectIdentifier adds a subject identifier to a topic.
*/
func (tm *Manager) doAddSubjectIdentifier(op *operation, t data.ID, loc data.Locator) error {
	existing := tm.ids.bySubjectIdentifier(loc)

	if existing == t {
		return nil
	} else if existing != data.NoID {
		return tm.mergeOnCollision(op, t, existing, loc)
	}

	if c := tm.ids.byItemIdentifier(loc); c != data.NoID && c != t {
		if tm.ids.kind(c) != data.KindTopic {
			return tm.identityConflict(loc, c)
		}

		if err := tm.mergeOnCollision(op, t, c, loc); err != nil {
			return err
		}
	}

	tm.ids.addSubjectIdentifier(t, loc)
	op.notify(data.EventSubjectIdentifierAdded, t, loc, nil)

	return nil
}

/*
doAddSubjectLocator adds a subject locator to a topic.
*/
func (tm *Manager) doAddSubjectLocator(op *operation, t data.ID, loc data.Locator) error {
	existing := tm.ids.bySubjectLocator(loc)

	if existing == t {
		return nil
	} else if existing != data.NoID {
		return tm.mergeOnCollision(op, t, existing, loc)
	}

	tm.ids.addSubjectLocator(t, loc)
	op.notify(data.EventSubjectLocatorAdded, t, loc, nil)

	return nil
}

// Types and supertypes
// ====================

/*
AddType adds a type to a topic.
*/
func (tm *Manager) AddType(t data.ID, typ data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		if typ, err = tm.topic(typ); err == nil {
			tm.doAddType(op, t, typ)
		}
	}

	return err
}

/*
RemoveType removes a type from a topic.
*/
func (tm *Manager) RemoveType(t data.ID, typ data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		if typ, err = tm.topic(typ); err == nil {
			tm.doRemoveType(op, t, typ)
		}
	}

	return err
}

func (tm *Manager) doAddType(op *operation, t data.ID, typ data.ID) {
	if tm.topicTypes.addType(t, typ) {
		op.notify(data.EventTypeAdded, t, typ, nil)
	}
}

func (tm *Manager) doRemoveType(op *operation, t data.ID, typ data.ID) {
	if tm.topicTypes.removeType(t, typ) {
		op.notify(data.EventTypeRemoved, t, nil, typ)
	}
}

/*
AddSupertype adds a supertype to a topic. A topic cannot be its own supertype.
*/
func (tm *Manager) AddSupertype(t data.ID, st data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		if st, err = tm.topic(st); err == nil {
			if t == st {
				return &util.TopicMapError{Type: util.ErrModelConstraint,
					Detail: fmt.Sprintf("Topic %v cannot be its own supertype", t)}
			}
			tm.doAddSupertype(op, t, st)
		}
	}

	return err
}

/*
RemoveSupertype removes a supertype from a topic.
*/
func (tm *Manager) RemoveSupertype(t data.ID, st data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		if st, err = tm.topic(st); err == nil {
			tm.doRemoveSupertype(op, t, st)
		}
	}

	return err
}

func (tm *Manager) doAddSupertype(op *operation, t data.ID, st data.ID) {
	if t != st && tm.topicTypes.addSupertype(t, st) {
		op.notify(data.EventSupertypeAdded, t, st, nil)
	}
}

func (tm *Manager) doRemoveSupertype(op *operation, t data.ID, st data.ID) {
	if tm.topicTypes.removeSupertype(t, st) {
		op.notify(data.EventSupertypeRemoved, t, nil, st)
	}
}

// Reification
// ===========

/*
SetReifier sets the reifier of a construct. A reifier of NoID removes the
reification. A topic can reify only one construct.
*/
func (tm *Manager) SetReifier(c data.ID, reifier data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if c, err = tm.construct(c); err != nil {
		return err
	} else if tm.ids.kind(c) == data.KindTopic {
		return &util.TopicMapError{Type: util.ErrModelConstraint,
			Detail: fmt.Sprintf("Topic %v cannot be reified", c)}
	}

	if reifier != data.NoID {
		if reifier, err = tm.topic(reifier); err != nil {
			return err
		}

		if r := tm.reif.reifiedBy(reifier); r != data.NoID && r != c {
			return &util.TopicMapError{Type: util.ErrModelConstraint,
				Detail: fmt.Sprintf("Topic %v already reifies %v", reifier, r)}
		}
	}

	tm.doSetReifier(op, c, reifier)

	return nil
}

func (tm *Manager) doSetReifier(op *operation, c data.ID, reifier data.ID) {
	if tm.reif.reifierOf(c) == reifier {
		return
	}

	old := tm.reif.setReifier(c, reifier)

	op.notify(data.EventReifierSet, c, reifier, old)
}

// Topic queries
// =============

/*
Resolve resolves the ID of a construct. The ID of a merged topic resolves to
the ID of the topic it was merged into. Returns NoID for unknown constructs.
*/
func (tm *Manager) Resolve(id data.ID) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.resolve(id)
}

/*
Exists checks if a construct exists.
*/
func (tm *Manager) Exists(id data.ID) bool {
	return tm.Resolve(id) != data.NoID
}

/*
Kind returns the kind of a construct.
*/
func (tm *Manager) Kind(id data.ID) data.Kind {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.kind(tm.ids.resolve(id))
}

/*
Parent returns the parent of a construct.
*/
func (tm *Manager) Parent(id data.ID) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.parent(tm.ids.resolve(id))
}

/*
Topics returns all topics.
*/
func (tm *Manager) Topics() []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.all(data.KindTopic)
}

/*
Constructs returns all constructs of a given kind.
*/
func (tm *Manager) Constructs(kind data.Kind) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.all(kind)
}

/*
Count returns the number of constructs of a given kind.
*/
func (tm *Manager) Count(kind data.Kind) int {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.count(kind)
}

/*
ItemIdentifiers returns the item identifiers of a construct.
*/
func (tm *Manager) ItemIdentifiers(c data.ID) []data.Locator {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.itemIdentifiersOf(tm.ids.resolve(c))
}

/*
SubjectIdentifiers returns the subject identifiers of a topic.
*/
func (tm *Manager) SubjectIdentifiers(t data.ID) []data.Locator {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.subjectIdentifiersOf(tm.ids.resolve(t))
}

/*
SubjectLocators returns the subject locators of a topic.
*/
func (tm *Manager) SubjectLocators(t data.ID) []data.Locator {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.subjectLocatorsOf(tm.ids.resolve(t))
}

/*
ConstructByItemIdentifier returns the construct with a given item identifier.
*/
func (tm *Manager) ConstructByItemIdentifier(loc data.Locator) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.byItemIdentifier(loc)
}

/*
TopicBySubjectIdentifier returns the topic with a given subject identifier.
*/
func (tm *Manager) TopicBySubjectIdentifier(loc data.Locator) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.bySubjectIdentifier(loc)
}

/*
TopicBySubjectLocator returns the topic with a given subject locator.
*/
func (tm *Manager) TopicBySubjectLocator(loc data.Locator) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.bySubjectLocator(loc)
}

/*
AllItemIdentifiers returns all item identifiers in use.
*/
func (tm *Manager) AllItemIdentifiers() []data.Locator {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.allItemIdentifiers()
}

/*
AllSubjectIdentifiers returns all subject identifiers in use.
*/
func (tm *Manager) AllSubjectIdentifiers() []data.Locator {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.allSubjectIdentifiers()
}

/*
AllSubjectLocators returns all subject locators in use.
*/
func (tm *Manager) AllSubjectLocators() []data.Locator {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.allSubjectLocators()
}

/*
Types returns the direct types of a topic.
*/
func (tm *Manager) Types(t data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.topicTypes.typesOf(tm.ids.resolve(t))
}

/*
Instances returns the direct instances of a topic type.
*/
func (tm *Manager) Instances(typ data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.topicTypes.instancesOf(tm.ids.resolve(typ))
}

/*
TopicTypes returns all topics which are used as topic types.
*/
func (tm *Manager) TopicTypes() []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.topicTypes.topicTypes()
}

/*
Supertypes returns the direct supertypes of a topic.
*/
func (tm *Manager) Supertypes(t data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.topicTypes.supertypesOf(tm.ids.resolve(t))
}

/*
Subtypes returns the direct subtypes of a topic.
*/
func (tm *Manager) Subtypes(t data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.topicTypes.subtypesOf(tm.ids.resolve(t))
}

/*
Reifier returns the reifier of a construct.
*/
func (tm *Manager) Reifier(c data.ID) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.reif.reifierOf(tm.ids.resolve(c))
}

/*
Reified returns the construct which is reified by a topic.
*/
func (tm *Manager) Reified(t data.ID) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.reif.reifiedBy(tm.ids.resolve(t))
}

/*
ReifiedConstructs returns all constructs which have a reifier.
*/
func (tm *Manager) ReifiedConstructs() []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.reif.allReified()
}
