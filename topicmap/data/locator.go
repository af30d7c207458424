/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package data

import (
	"net/url"
	"strings"

	"github.com/krotik/topicdb/topicmap/util"
)

/*
Locator is an absolute IRI.
*/
type Locator string

/*
NewLocator creates a new locator from a given reference. The reference must
be absolute.
*/
func NewLocator(reference string) (Locator, error) {
	reference = strings.TrimSpace(reference)

	u, err := url.Parse(reference)

	if err != nil {
		return "", util.NewError(util.ErrModelConstraint, "Invalid locator %v: %v", reference, err)
	} else if !u.IsAbs() {
		return "", util.NewError(util.ErrModelConstraint, "Locator must be absolute: %v", reference)
	}

	return Locator(u.String()), nil
}

/*
Resolve resolves a (possibly relative) reference against this locator.
*/
func (l Locator) Resolve(reference string) (Locator, error) {
	base, err := url.Parse(string(l))

	if err == nil {
		var ref *url.URL

		if ref, err = url.Parse(strings.TrimSpace(reference)); err == nil {
			return NewLocator(base.ResolveReference(ref).String())
		}
	}

	return "", util.NewError(util.ErrModelConstraint, "Cannot resolve %v against %v", reference, l)
}

/*
String returns the string representation of this locator.
*/
func (l Locator) String() string {
	return string(l)
}

/*
TMDM reserved subject identifiers
*/
const (
	TMDMNamespace = "http://psi.topicmaps.org/iso13250/model/"

	PSIDefaultNameType  Locator = TMDMNamespace + "topic-name"
	PSITypeInstance     Locator = TMDMNamespace + "type-instance"
	PSIType             Locator = TMDMNamespace + "type"
	PSIInstance         Locator = TMDMNamespace + "instance"
	PSISupertypeSubtype Locator = TMDMNamespace + "supertype-subtype"
	PSISupertype        Locator = TMDMNamespace + "supertype"
	PSISubtype          Locator = TMDMNamespace + "subtype"

	XSDString   Locator = "http://www.w3.org/2001/XMLSchema#string"
	XSDAnyURI   Locator = "http://www.w3.org/2001/XMLSchema#anyURI"
	XSDInteger  Locator = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  Locator = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDBoolean  Locator = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDDateTime Locator = "http://www.w3.org/2001/XMLSchema#dateTime"
)
