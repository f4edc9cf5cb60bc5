package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/sigstore/pkg/demo"
	"github.com/vango-dev/sigstore/pkg/host"
	"github.com/vango-dev/sigstore/pkg/reactive"
)

// renderLog records the components flushed since the last take and how
// many nodes rendered in total, children included.
type renderLog struct {
	flushed []string
	renders int
}

func (l *renderLog) NodeRendered(*host.Node)  { l.renders++ }
func (l *renderLog) NodeUnmounted(*host.Node) {}

func (l *renderLog) patch(p host.Patch) { l.flushed = append(l.flushed, p.Component) }

func (l *renderLog) take() ([]string, int) {
	flushed, renders := l.flushed, l.renders
	l.flushed, l.renders = nil, 0
	return flushed, renders
}

type replayStep struct {
	name string
	run  func(s *demo.Store)
}

var replaySteps = []replayStep{
	{"write b=20 (hidden)", func(s *demo.Store) { s.B.Set(20) }},
	{"write c=30 (shown)", func(s *demo.Store) { s.C.Set(30) }},
	{"write a=2 (show b)", func(s *demo.Store) { s.A.Set(2) }},
	{"write c=31 (hidden)", func(s *demo.Store) { s.C.Set(31) }},
	{"write b=21 (shown)", func(s *demo.Store) { s.B.Set(21) }},
	{"random everything", func(s *demo.Store) { s.RandomEverything() }},
	{"set name Vue", func(s *demo.Store) { s.SetName("Vue") }},
	{"set name Solid", func(s *demo.Store) { s.SetName("Solid") }},
	{"tick", func(s *demo.Store) { s.Tick(s.CurrentTime.Peek().Add(time.Second)) }},
}

func replayCmd() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Run the demo headlessly and print what re-renders",
		Long: `Mount the demo without a browser, apply a fixed sequence of writes,
and print the components rendered after each one.

Writes to cells a component did not read in its last render never
re-render it. LogPanel re-renders whenever another component logs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.OutOrStdout(), seed)
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for the random actions")

	return cmd
}

func runReplay(out io.Writer, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed))
	log := &renderLog{}
	defs := demo.NewDefinitions()
	tree := host.NewTree(defs.App(demo.Args{
		Runtime:     reactive.NewRuntime(),
		InitialName: "Solid",
		Now:         time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Rand:        rng.IntN,
	}), host.WithObserver(log), host.WithPatchSink(log.patch))

	tree.Mount()
	_, renders := log.take()
	printStep(out, "mount", []string{tree.Root().Name()}, renders)
	store := defs.Demo.Use(tree.Root())

	for _, step := range replaySteps {
		step.run(store)
		if _, err := tree.Flush(); err != nil {
			return err
		}
		flushed, renders := log.take()
		printStep(out, step.name, flushed, renders)
	}

	tree.Unmount()
	fmt.Fprintf(out, "%-24s builds=%d\n", "unmount", defs.Builds())
	return nil
}

func printStep(out io.Writer, name string, flushed []string, renders int) {
	if len(flushed) == 0 {
		fmt.Fprintf(out, "%-24s (nothing)\n", name)
		return
	}
	fmt.Fprintf(out, "%-24s %s (renders=%d)\n", name, strings.Join(flushed, ", "), renders)
}
