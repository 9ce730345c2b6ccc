// Copyright 2025 Alibaba Group Holding Ltd.
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

package preview

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alibaba/opensandbox/previewd/pkg/log"
	"github.com/alibaba/opensandbox/previewd/pkg/util/safego"
)

const (
	writeTimeout = 10 * time.Second
	sendBuffer   = 8
)

// Hub pushes every new publication to the connected rendering
// surfaces. Each connection gets the full binding; a surface that
// falls too far behind is dropped rather than blocking the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan Binding
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast queues the binding for every connected surface.
func (h *Hub) Broadcast(b Binding) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			log.Warn("preview client too slow, dropping connection")
			h.dropLocked(c)
		}
	}
}

// Serve takes ownership of an upgraded websocket connection, sends the
// current binding immediately and then streams every broadcast until
// the connection closes.
func (h *Hub) Serve(conn *websocket.Conn, current Binding) {
	c := &client{conn: conn, send: make(chan Binding, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	c.send <- current

	safego.Go(func() { h.writeLoop(c) })
	safego.Go(func() { h.readLoop(c) })
}

// ClientCount reports the number of connected surfaces.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(c *client) {
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(b); err != nil {
			log.Debug("preview push failed: %v", err)
			h.drop(c)
			return
		}
	}
}

// readLoop discards inbound frames; it exists to notice a closed peer.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
}
