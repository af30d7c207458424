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
	"github.com/krotik/topicdb/topicmap/data"
)

/*
CreateAssociation creates a new association.
*/
func (tm *Manager) CreateAssociation(typ data.ID, themes []data.ID) (data.ID, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if typ, err = tm.topic(typ); err == nil {
		if themes, err = tm.topicList(themes); err == nil {
			return tm.doCreateAssociation(op, typ, tm.scopes.scope(themes)), nil
		}
	}

	return data.NoID, err
}

/*
CreateRole creates a new role in an association.
*/
func (tm *Manager) CreateRole(assoc data.ID, typ data.ID, player data.ID) (data.ID, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return data.NoID, err
	}
	defer unlock()

	if assoc, err = tm.construct(assoc, data.KindAssociation); err == nil {
		if typ, err = tm.topic(typ); err == nil {
			if player, err = tm.topic(player); err == nil {
				return tm.doCreateRole(op, assoc, typ, player), nil
			}
		}
	}

	return data.NoID, err
}

/*
SetPlayer sets the player of a role.
*/
func (tm *Manager) SetPlayer(role data.ID, player data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if role, err = tm.construct(role, data.KindRole); err == nil {
		if player, err = tm.topic(player); err == nil {
			tm.doSetPlayer(op, role, player)
		}
	}

	return err
}

func (tm *Manager) doCreateAssociation(op *operation, typ data.ID, scope *data.Scope) data.ID {
	assoc := tm.ids.newConstruct(data.KindAssociation, tm.tmID)

	tm.typed.setType(assoc, typ)
	tm.scopes.setScope(assoc, scope)

	op.notify(data.EventAssociationAdded, tm.tmID, assoc, nil)
	op.notify(data.EventTypeSet, assoc, typ, data.NoID)
	op.notify(data.EventScopeModified, assoc, scope, nil)

	return assoc
}

func (tm *Manager) doCreateRole(op *operation, assoc data.ID, typ data.ID, player data.ID) data.ID {
	role := tm.ids.newConstruct(data.KindRole, assoc)

	tm.assocs.addRole(assoc, role, player)
	tm.typed.setType(role, typ)

	op.notify(data.EventRoleAdded, assoc, role, nil)
	op.notify(data.EventTypeSet, role, typ, data.NoID)
	op.notify(data.EventPlayerModified, role, player, data.NoID)

	return role
}

func (tm *Manager) doSetPlayer(op *operation, role data.ID, player data.ID) {
	if old := tm.assocs.playerOf(role); old != player {
		tm.assocs.setPlayer(role, player)
		op.notify(data.EventPlayerModified, role, player, old)
	}
}

// Queries
// =======

/*
Associations returns all associations.
*/
func (tm *Manager) Associations() []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.ids.all(data.KindAssociation)
}

/*
Roles returns the roles of an association.
*/
func (tm *Manager) Roles(assoc data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.assocs.rolesOf(assoc)
}

/*
RolesByType returns the roles of an association which have a given type.
*/
func (tm *Manager) RolesByType(assoc data.ID, typ data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var res []data.ID

	typ = tm.ids.resolve(typ)

	for _, r := range tm.assocs.rolesOf(assoc) {
		if tm.typed.typeOf(r) == typ {
			res = append(res, r)
		}
	}

	return res
}

/*
Player returns the player of a role.
*/
func (tm *Manager) Player(role data.ID) data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.assocs.playerOf(role)
}

/*
RolesPlayed returns all roles played by a topic.
*/
func (tm *Manager) RolesPlayed(t data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.assocs.rolesPlayed(tm.ids.resolve(t))
}

/*
AssociationsPlayed returns all associations in which a topic plays a role.
*/
func (tm *Manager) AssociationsPlayed(t data.ID) []data.ID {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return tm.associationsPlayed(tm.ids.resolve(t))
}

func (tm *Manager) associationsPlayed(t data.ID) []data.ID {
	var res []data.ID

	for _, r := range tm.assocs.rolesPlayed(t) {
		res = append(res, tm.ids.parent(r))
	}

	return data.SortedIDs(res)
}
