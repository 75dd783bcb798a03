// Package fst implements a small non-deterministic finite-state
// transducer used to index stems and affixes for fast, shared-prefix
// lookup: every inserted string shares states with any previously
// inserted string along a common prefix, and a "star" self-loop state can
// stand in for a "." wildcard segment (used by incorporated-stem and
// regex-bearing entries).
package fst

import "sort"

// State is one node of the transducer: transitions on a literal byte,
// epsilon transitions to other states, an optional self-loop ("star")
// matching any byte, and payloads attached if the state is accepting.
type State struct {
	id      int
	trans   map[byte][]int
	epsilon []int
	star    bool
	final   bool
	payload []any
}

// FST is a non-deterministic transducer over byte strings.
type FST struct {
	states []*State
	start  int
}

// New returns an empty transducer with a single start state.
func New() *FST {
	f := &FST{}
	f.start = f.newState()
	return f
}

func (f *FST) newState() int {
	id := len(f.states)
	f.states = append(f.states, &State{id: id, trans: make(map[byte][]int)})
	return id
}

// AddString inserts s into the transducer, attaching payload to the state
// reached after consuming all of s. Shared prefixes with previously
// inserted strings reuse existing states.
func (f *FST) AddString(s string, payload any) {
	cur := f.start
	for i := 0; i < len(s); i++ {
		b := s[i]
		next := -1
		for _, n := range f.states[cur].trans[b] {
			next = n
			break
		}
		if next == -1 {
			next = f.newState()
			f.states[cur].trans[b] = append(f.states[cur].trans[b], next)
		}
		cur = next
	}
	f.states[cur].final = true
	f.states[cur].payload = append(f.states[cur].payload, payload)
}

// AddStem inserts a dictionary stem, keyed by its literal text.
func (f *FST) AddStem(stem string, sublexeme any) {
	f.AddString(stem, sublexeme)
}

// AddIncorpStem inserts an incorporated-stem entry: like AddStem, but the
// stem is additionally reachable after a wildcard prefix of arbitrary
// length, since an incorporated stem may follow any amount of preceding
// material within the same token.
func (f *FST) AddIncorpStem(stem string, sublexeme any) {
	star := f.newState()
	f.states[star].star = true
	f.states[f.start].epsilon = append(f.states[f.start].epsilon, star)
	f.states[star].epsilon = append(f.states[star].epsilon, star)

	cur := star
	for i := 0; i < len(stem); i++ {
		b := stem[i]
		next := -1
		for _, n := range f.states[cur].trans[b] {
			next = n
			break
		}
		if next == -1 {
			next = f.newState()
			f.states[cur].trans[b] = append(f.states[cur].trans[b], next)
		}
		cur = next
	}
	f.states[cur].final = true
	f.states[cur].payload = append(f.states[cur].payload, sublexeme)
}

// AddAffix inserts a flex template's affix string, keyed by the affix
// itself, with inflexion as its payload.
func (f *FST) AddAffix(affix string, inflexion any) {
	f.AddString(affix, inflexion)
}

// GetReachableStates returns the epsilon-closure of state: state itself
// plus every state reachable through zero or more epsilon transitions.
func (f *FST) GetReachableStates(state int) []int {
	seen := map[int]bool{state: true}
	queue := []int{state}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range f.states[cur].epsilon {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Match is one accepted path through the transducer: the length of input
// consumed and the payload attached to the state it ended in.
type Match struct {
	Length  int
	Payload any
}

// Transduce returns every way a prefix of input can be consumed ending in
// an accepting state, following epsilon transitions and star self-loops
// alongside literal byte transitions.
func (f *FST) Transduce(input string) []Match {
	var matches []Match
	frontier := f.GetReachableStates(f.start)
	collect := func(states []int, length int) {
		for _, s := range states {
			if f.states[s].final {
				for _, p := range f.states[s].payload {
					matches = append(matches, Match{Length: length, Payload: p})
				}
			}
		}
	}
	collect(frontier, 0)

	for i := 0; i < len(input); i++ {
		b := input[i]
		nextSet := map[int]bool{}
		for _, s := range frontier {
			st := f.states[s]
			if st.star {
				nextSet[s] = true // self-loop: stay in the star state
			}
			for _, n := range st.trans[b] {
				nextSet[n] = true
			}
		}
		if len(nextSet) == 0 {
			break
		}
		next := make([]int, 0, len(nextSet))
		for s := range nextSet {
			next = append(next, s)
		}
		closure := map[int]bool{}
		var closed []int
		for _, s := range next {
			for _, r := range f.GetReachableStates(s) {
				if !closure[r] {
					closure[r] = true
					closed = append(closed, r)
				}
			}
		}
		sort.Ints(closed)
		frontier = closed
		collect(frontier, i+1)
	}
	return matches
}
