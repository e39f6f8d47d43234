package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"dupfind/internal/events"
	"dupfind/internal/logger"
	"dupfind/internal/metrics"
	"dupfind/internal/results"
	"dupfind/internal/scan"

	"golang.org/x/net/websocket"
)

// Server はスキャン状況を公開する API サーバー
type Server struct {
	addr      string
	engine    *scan.Engine
	bus       *events.Bus
	collector *metrics.Collector

	mu        sync.RWMutex
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成する
// bus と collector は nil でもよい
func NewServer(addr string, engine *scan.Engine, bus *events.Bus, collector *metrics.Collector) *Server {
	return &Server{
		addr:      addr,
		engine:    engine,
		bus:       bus,
		collector: collector,
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/duplicates", s.handleDuplicates)
	if s.collector != nil {
		mux.Handle("/metrics", s.collector.Handler())
	}
	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	return mux
}

// Start はサーバーを開始し、ctx がキャンセルされるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// バックグラウンドでイベント配信
	go s.broadcastLoop(ctx)

	logger.Info("api", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, s.engine.Status())
}

// DuplicatesResponse は重複一覧レスポンス
type DuplicatesResponse struct {
	ScanID      string          `json:"scan_id,omitempty"`
	Completed   bool            `json:"completed"`
	Groups      []results.Group `json:"groups"`
	WastedBytes int64           `json:"wasted_bytes"`
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := DuplicatesResponse{Groups: []results.Group{}}
	if result := s.engine.LastResult(); result != nil {
		resp.ScanID = result.ScanID
		resp.Completed = true
		if result.Groups != nil {
			resp.Groups = result.Groups
		}
		resp.WastedBytes = results.TotalWasted(result.Groups)
	}

	s.writeJSON(w, resp)
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

// ClientCount は接続中の WebSocket クライアント数を返す
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wsClients)
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// broadcastLoop はバスのイベントと定期的なステータスを配信する
func (s *Server) broadcastLoop(ctx context.Context) {
	var eventCh <-chan events.Event
	if s.bus != nil {
		ch := s.bus.Subscribe()
		defer s.bus.Unsubscribe(ch)
		eventCh = ch
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			s.broadcast(map[string]any{
				"type":  "event",
				"event": ev,
			})
		case <-ticker.C:
			status := s.engine.Status()
			if !status.Running {
				continue
			}
			s.broadcast(map[string]any{
				"type":   "status",
				"status": status,
			})
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("api", "Failed to encode JSON: %v", err)
	}
}
