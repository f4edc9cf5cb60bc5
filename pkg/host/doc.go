// Package host is a small component renderer: a tree of nodes whose render
// functions produce HTML fragments and re-run on request.
//
// It offers what a binding hook needs from a UI framework:
//
//   - ambient values visible to a subtree (Node.Provide / Node.Lookup)
//   - per-mount state that survives re-renders (UseSlot, UseRef)
//   - callbacks that run once after each committed pass (Node.AfterCommit)
//   - re-render requests that coalesce until the next flush (Node.Invalidate)
//   - unmount cleanups (Node.OnUnmount)
//
// A Tree is single-threaded. Callers drive it by calling Flush after state
// changes, or install an OnNeedsFlush hook to queue a flush on their own loop.
package host
