package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/publisher"
)

// streamBlockTimeout is how long an idle XRead parks server-side before
// the relay loop re-checks its context. Must be a real duration; a bare
// integer here is nanoseconds and turns the relay into a busy poll.
const streamBlockTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Server pushes completed moment analyses to WebSocket subscribers by
// relaying the Redis analysis stream.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	cache  *cache.RedisCache
}

// NewServer creates a new WebSocket server
func NewServer(cache *cache.RedisCache) *Server {
	return &Server{
		hub:   NewHub(),
		cache: cache,
	}
}

// Start starts the WebSocket server and the stream relay
func (s *Server) Start(ctx context.Context, port string) error {
	s.port = port

	go s.hub.Run()
	go s.relayAnalysisStream(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/analyses", s.handleAnalyses)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// relayAnalysisStream tails the analysis stream and broadcasts each entry
// to connected clients.
func (s *Server) relayAnalysisStream(ctx context.Context) {
	lastID := "$"

	for {
		if ctx.Err() != nil {
			return
		}

		streams, err := s.cache.Client().XRead(ctx, &redis.XReadArgs{
			Streams: []string{publisher.StreamAnalyses, lastID},
			Count:   10,
			Block:   streamBlockTimeout,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("[websocket] reading analysis stream: %v", err)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				if data, ok := message.Values["data"].(string); ok {
					s.hub.Broadcast([]byte(data))
				}
			}
		}
	}
}

// handleAnalyses handles WebSocket connections for analysis updates
func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// BroadcastAnalysis sends an analysis update to all connected clients
func (s *Server) BroadcastAnalysis(data []byte) {
	s.hub.Broadcast(data)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
