// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"strings"
)

// QualifiedName joins a workspace and a name the way GeoServer
// addresses layers, "workspace:name".  An empty workspace returns name
// unchanged.
func QualifiedName(workspace, name string) string {
	if workspace == "" {
		return name
	}
	return workspace + ":" + name
}

// SplitQualifiedName is the dual of QualifiedName.  A name without a
// colon has an empty workspace.  Only the first colon separates, so a
// name may itself contain colons.
func SplitQualifiedName(qualified string) (workspace, name string) {
	parts := strings.SplitN(qualified, ":", 2)
	if len(parts) == 1 {
		return "", parts[0]
	}
	return parts[0], parts[1]
}
