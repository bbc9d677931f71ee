// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package encoder

// Workspace is a <workspace> document.
type Workspace struct {
	*PropertyEncoder
}

// NewWorkspace creates a workspace document.
func NewWorkspace(name string) *Workspace {
	w := &Workspace{NewPropertyEncoder("workspace")}
	w.SetName(name)
	return w
}

// SetName renames the workspace.
func (w *Workspace) SetName(name string) {
	w.Set("name", name)
}

// Namespace is a <namespace> document.  Every workspace has a
// namespace with the same prefix; creating the namespace creates the
// workspace too, and is the only way to choose the URI.
type Namespace struct {
	*PropertyEncoder
}

// NewNamespace creates a namespace document.
func NewNamespace(prefix, uri string) *Namespace {
	n := &Namespace{NewPropertyEncoder("namespace")}
	n.Set("prefix", prefix)
	n.SetURI(uri)
	return n
}

// SetURI changes the namespace URI.
func (n *Namespace) SetURI(uri string) {
	n.Set("uri", uri)
}

// SetIsolated marks the namespace isolated, so its layers are visible
// only through the workspace's virtual services.
func (n *Namespace) SetIsolated(isolated bool) {
	n.SetBool("isolated", isolated)
}
