// Package demo is a small application built on sigstore: a greeting with
// an editable name, a ticking clock, and three numbers of which only two
// are shown at a time. Every component logs its renders into the store,
// which makes the selective re-rendering visible.
package demo
