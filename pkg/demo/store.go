package demo

import (
	"math/rand/v2"
	"time"

	"github.com/vango-dev/sigstore/pkg/host"
	"github.com/vango-dev/sigstore/pkg/reactive"
	"github.com/vango-dev/sigstore/pkg/sigstore"
)

// DefaultLogLimit is how many log entries the store keeps by default.
const DefaultLogLimit = 10

// Tracked fields of the demo store.
var (
	NameField        = sigstore.NewField[string]("name")
	CurrentTimeField = sigstore.NewField[time.Time]("currentTime")
	AField           = sigstore.NewField[int]("a")
	BField           = sigstore.NewField[int]("b")
	CField           = sigstore.NewField[int]("c")
	ShowBorCField    = sigstore.NewField[string]("showBorC")
	LogsField        = sigstore.NewField[[]LogEntry]("logs")
)

// ShowedNameField is the tracked field of the name store.
var ShowedNameField = sigstore.NewField[string]("showedName")

// LogEntry is one line of the render log.
type LogEntry struct {
	Seq     int
	Message string
}

// Args configure a demo store when its provider mounts.
type Args struct {
	// Runtime owns the store's cells. Required.
	Runtime *reactive.Runtime

	// InitialName seeds the name cell.
	InitialName string

	// Now seeds the clock. Zero means time.Now().
	Now time.Time

	// LogLimit bounds the log. Zero means DefaultLogLimit.
	LogLimit int

	// Rand returns a number in [0, n). Nil means math/rand/v2.IntN.
	Rand func(n int) int
}

// Store is the demo store.
type Store struct {
	sigstore.Base

	Name        *reactive.Signal[string]
	CurrentTime *reactive.Signal[time.Time]
	A, B, C     *reactive.Signal[int]
	ShowBorC    *reactive.Memo[string]
	Logs        *reactive.Signal[[]LogEntry]

	rt    *reactive.Runtime
	rand  func(n int) int
	limit int
	seq   int
}

// NewStore builds a demo store from args.
func NewStore(args Args) *Store {
	if args.Runtime == nil {
		panic("demo: Args.Runtime is required")
	}
	if args.Now.IsZero() {
		args.Now = time.Now()
	}
	if args.LogLimit <= 0 {
		args.LogLimit = DefaultLogLimit
	}
	if args.Rand == nil {
		args.Rand = rand.IntN
	}

	rt := args.Runtime
	s := &Store{
		Name:        reactive.NewSignal(rt, args.InitialName),
		CurrentTime: reactive.NewSignal(rt, args.Now),
		A:           reactive.NewSignal(rt, 1),
		B:           reactive.NewSignal(rt, 2),
		C:           reactive.NewSignal(rt, 3),
		Logs:        reactive.NewSignal(rt, []LogEntry(nil)),
		rt:          rt,
		rand:        args.Rand,
		limit:       args.LogLimit,
	}
	s.ShowBorC = reactive.NewMemo(rt, func() string {
		if s.A.Get()%2 == 0 {
			return "b"
		}
		return "c"
	})
	s.Base = sigstore.NewBase(rt, sigstore.Cells{
		"name":        s.Name,
		"currentTime": s.CurrentTime,
		"a":           s.A,
		"b":           s.B,
		"c":           s.C,
		"showBorC":    s.ShowBorC,
		"logs":        s.Logs,
	})
	return s
}

// SetName replaces the name.
func (s *Store) SetName(name string) {
	s.Name.Set(name)
}

// RandomA sets a to a random digit.
func (s *Store) RandomA() { s.A.Set(s.rand(10)) }

// RandomB sets b to a random digit.
func (s *Store) RandomB() { s.B.Set(s.rand(10)) }

// RandomC sets c to a random digit.
func (s *Store) RandomC() { s.C.Set(s.rand(10)) }

// RandomEverything sets a, b and c in one batch.
func (s *Store) RandomEverything() {
	s.rt.Batch(func() {
		s.RandomA()
		s.RandomB()
		s.RandomC()
	})
}

// Tick advances the clock.
func (s *Store) Tick(now time.Time) {
	s.CurrentTime.Set(now)
}

// Log appends message, keeping the most recent entries only. It never
// subscribes the caller, so render functions may log.
func (s *Store) Log(message string) {
	s.rt.Untracked(func() {
		s.Logs.Update(func(logs []LogEntry) []LogEntry {
			if len(logs) >= s.limit {
				logs = logs[len(logs)-s.limit+1:]
			}
			next := make([]LogEntry, len(logs), len(logs)+1)
			copy(next, logs)
			next = append(next, LogEntry{Seq: s.seq, Message: message})
			s.seq++
			return next
		})
	})
}

// NameStore derives the displayed name from the demo store.
type NameStore struct {
	sigstore.Base
	ShowedName *reactive.Memo[string]
}

func newNameStore(demo *Store) *NameStore {
	showed := reactive.NewMemo(demo.rt, func() string {
		if name := demo.Name.Get(); name != "Solid" {
			return name
		}
		return "React"
	})
	return &NameStore{
		Base:       sigstore.NewBase(demo.rt, sigstore.Cells{"showedName": showed}),
		ShowedName: showed,
	}
}

// Definitions holds the store definitions of one demo application.
type Definitions struct {
	Demo  *sigstore.Definition[Args, *Store]
	Names *sigstore.Definition[struct{}, *NameStore]

	builds int
}

// NewDefinitions defines the demo and name stores. opts apply to both.
func NewDefinitions(opts ...sigstore.Option) *Definitions {
	d := &Definitions{}
	d.Demo = sigstore.Define("demo", func(_ *host.Node, args Args) *Store {
		d.builds++
		return NewStore(args)
	}, opts...)
	d.Names = sigstore.Define("name", func(n *host.Node, _ struct{}) *NameStore {
		return newNameStore(d.Demo.Use(n))
	}, opts...)
	return d
}

// Builds returns how many demo stores have been built.
func (d *Definitions) Builds() int {
	return d.builds
}
