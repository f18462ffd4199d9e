// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dialogue

import (
	"context"

	"github.com/poiesic/wayfinder/core"
)

// EventType names the kind of a stream event.
type EventType string

const (
	EventNode    EventType = "node"
	EventToken   EventType = "token"
	EventDebug   EventType = "debug"
	EventContext EventType = "context"
	EventFinal   EventType = "final"
	EventDone    EventType = "done"
)

// Event is one item of a turn's stream. Only the fields that belong to the
// event's Type are set.
type Event struct {
	Type   EventType `json:"type"`
	TurnID string    `json:"turn_id"`
	Node   string    `json:"node,omitempty"`
	Token  string    `json:"token,omitempty"`
	Final  string    `json:"final,omitempty"`
	// Superseded is set on a final event whose text replaces the tokens
	// streamed before the answer model failed.
	Superseded bool `json:"superseded,omitempty"`
	// Candidates accompanies the final event with the places the answer used.
	Candidates []core.Candidate `json:"candidates,omitempty"`
	Context    *Context         `json:"context,omitempty"`
	Debug      any              `json:"debug,omitempty"`
}

// emitter queues events for the consumer so that a slow reader never holds
// up the graph.
type emitter struct {
	turnID string
	in     chan Event
}

func newEmitter(ctx context.Context, turnID string) (*emitter, <-chan Event) {
	e := &emitter{turnID: turnID, in: make(chan Event)}
	out := make(chan Event, 16)
	go pump(ctx, e.in, out)
	return e, out
}

func (e *emitter) emit(ev Event) {
	ev.TurnID = e.turnID
	e.in <- ev
}

func (e *emitter) close() {
	close(e.in)
}

// pump moves events from in to out through an unbounded queue. Once ctx is
// done, remaining events are discarded but in is still drained so senders
// never block.
func pump(ctx context.Context, in <-chan Event, out chan<- Event) {
	defer close(out)
	var queue []Event
	done := ctx.Done()
	for in != nil || len(queue) > 0 {
		var (
			send chan<- Event
			next Event
		)
		if len(queue) > 0 {
			send = out
			next = queue[0]
		}

		select {
		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, ev)
		case send <- next:
			queue = queue[1:]
		case <-done:
			if in != nil {
				for range in {
				}
			}
			return
		}
	}
}
