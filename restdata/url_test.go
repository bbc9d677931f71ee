// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"testing"
)

func TestQualifiedName(t *testing.T) {
	tests := []struct{ workspace, name, qualified string }{
		{"topp", "states", "topp:states"},
		{"", "states", "states"},
		{"ws", "a:b", "ws:a:b"},
	}
	for _, test := range tests {
		q := QualifiedName(test.workspace, test.name)
		if q != test.qualified {
			t.Errorf("QualifiedName(%q, %q) => %q, want %q",
				test.workspace, test.name, q, test.qualified)
		}

		ws, name := SplitQualifiedName(test.qualified)
		if ws != test.workspace || name != test.name {
			t.Errorf("SplitQualifiedName(%q) => %q, %q, want %q, %q",
				test.qualified, ws, name, test.workspace, test.name)
		}
	}
}
