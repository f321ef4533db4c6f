package view

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/determined-ai/memberpanel/pkg/model"
)

// State is an immutable copy of the page. OptionsVersion only moves when the selection control is
// rebuilt, which lets clients keep an operator's selection across background polls.
type State struct {
	Version        uint64    `json:"version"`
	OptionsVersion uint64    `json:"options_version"`
	Clock          time.Time `json:"clock"`
	Entries        []string  `json:"entries"`
	Options        []Option  `json:"options"`
}

// Text renders the state for a terminal.
func (s State) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Clock.Format(time.RFC1123))
	for _, e := range s.Entries {
		fmt.Fprintf(&b, "  %s\n", e)
	}
	return b.String()
}

// Page is the panel's document. Reconciliation mutates a draft from the polling loop; HTTP
// handlers and subscribers only ever see copies taken at publish time.
type Page struct {
	mu        sync.Mutex
	state     State
	published State
	subs      map[int]chan State
	nextSub   int
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{subs: make(map[int]chan State)}
}

// List implements Document.
func (p *Page) List() ListContainer { return pageList{p} }

// Select implements Document.
func (p *Page) Select() SelectControl { return pageSelect{p} }

// Clock implements Document.
func (p *Page) Clock() ClockDisplay { return pageClock{p} }

// Render reconciles the snapshot into the page and publishes the result.
func (p *Page) Render(snap model.Snapshot, fullRefresh bool) {
	Reconcile(p, snap, fullRefresh)
	p.publish()
}

// SetClock updates the clock display and publishes the result.
func (p *Page) SetClock(t time.Time) {
	p.Clock().SetTime(t)
	p.publish()
}

// State returns the most recently published page.
func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published.clone()
}

// Subscribe returns a channel that receives the page after every publish. Slow subscribers only
// see the latest state. The returned function unsubscribes.
func (p *Page) Subscribe() (<-chan State, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan State, 1)
	ch <- p.published.clone()
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}

func (p *Page) publish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.Version++
	p.published = p.state.clone()
	for _, ch := range p.subs {
		st := p.published.clone()
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

func (s State) clone() State {
	c := s
	c.Entries = append([]string(nil), s.Entries...)
	c.Options = append([]Option(nil), s.Options...)
	return c
}

type pageList struct{ p *Page }

func (l pageList) Clear() {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	l.p.state.Entries = nil
}

func (l pageList) Append(text string) {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	l.p.state.Entries = append(l.p.state.Entries, text)
}

type pageSelect struct{ p *Page }

func (s pageSelect) ClearOptions() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.state.Options = nil
	s.p.state.OptionsVersion++
}

func (s pageSelect) AddOption(o Option) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.state.Options = append(s.p.state.Options, o)
}

type pageClock struct{ p *Page }

func (c pageClock) SetTime(t time.Time) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	c.p.state.Clock = t
}
