package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Leeps-Lab/etf-cda/pkg/config"
	"github.com/Leeps-Lab/etf-cda/pkg/logger"
	"github.com/Leeps-Lab/etf-cda/pkg/util"

	commandv1 "github.com/Leeps-Lab/etf-cda/internal/domain/command/v1"
	eventv1 "github.com/Leeps-Lab/etf-cda/internal/domain/event/v1"
	"github.com/Leeps-Lab/etf-cda/internal/app/replica"
)

// Server exposes the replica to the renderer over REST and WebSocket.
// Reads come straight from the local replica; writes are published as
// commands and acknowledged before the exchange responds.
type Server struct {
	replica   *replica.Replica
	publisher commandv1.Publisher
	router    *mux.Router
	hub       *Hub
	config    *config.Config
	logger    *logger.Logger
}

// NewServer creates a gateway server and subscribes its hub to the
// replica's event stream.
func NewServer(r *replica.Replica, publisher commandv1.Publisher, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		replica:   r,
		publisher: publisher,
		router:    mux.NewRouter(),
		hub:       NewHub(log),
		config:    cfg,
		logger:    log,
	}

	s.setupRoutes()
	r.Subscribe(s.publishEvent)

	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/assets", s.handleGetAssets).Methods("GET")
	api.HandleFunc("/assets/{asset}/book", s.handleGetBook).Methods("GET")
	api.HandleFunc("/assets/{asset}/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/holdings", s.handleGetHoldings).Methods("GET")

	api.HandleFunc("/orders", s.handleEnterOrder).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")
	api.HandleFunc("/orders/accept", s.handleAcceptOrder).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the gateway server. It blocks until the listener fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.Gateway.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.logger.Info("gateway listening", logger.Field{Key: "addr", Value: addr})
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// publishEvent routes a replica event onto the matching hub channel.
func (s *Server) publishEvent(event eventv1.Event) {
	msg := WSMessage{Type: string(event.Kind), Data: event}

	switch event.Kind {
	case eventv1.KindConfirmOrderEnter, eventv1.KindConfirmOrderCancel:
		s.hub.BroadcastToChannel("book:"+event.Order.AssetName, msg)
	case eventv1.KindConfirmTrade:
		s.hub.BroadcastToChannel("trades:"+event.Trade.AssetName, msg)
	case eventv1.KindError:
		s.hub.BroadcastToChannel("account", msg)
	}
}

func (s *Server) handleGetAssets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.config.Assets)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]

	bids := s.replica.Bids(asset)
	asks := s.replica.Asks(asset)
	if bids == nil && asks == nil && !s.knownAsset(asset) {
		respondError(w, http.StatusNotFound, "unknown asset", asset)
		return
	}

	respondJSON(w, BookSnapshot{
		AssetName: asset,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	if !s.knownAsset(asset) {
		respondError(w, http.StatusNotFound, "unknown asset", asset)
		return
	}

	respondJSON(w, s.replica.Trades(asset))
}

func (s *Server) handleGetHoldings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.replica.Holdings())
}

func (s *Server) handleEnterOrder(w http.ResponseWriter, r *http.Request) {
	var req EnterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	if req.Price <= 0 || req.Volume <= 0 {
		respondError(w, http.StatusBadRequest, "price and volume must be positive", "")
		return
	}
	if !s.knownAsset(req.AssetName) {
		respondError(w, http.StatusBadRequest, "unknown asset", req.AssetName)
		return
	}

	// Advisory pre-check. The exchange re-checks authoritatively and
	// its rejection would come back on the account channel anyway.
	if !s.replica.CheckAvailable(req.Price, req.Volume, req.IsBid, req.AssetName) {
		respondError(w, http.StatusUnprocessableEntity, "insufficient available balance", "")
		return
	}

	ctx := util.WithRequestID(r.Context(), "")
	err := s.publisher.Enter(ctx, commandv1.EnterPayload{
		ParticipantID: s.config.ParticipantID,
		AssetName:     req.AssetName,
		IsBid:         req.IsBid,
		Price:         req.Price,
		Volume:        req.Volume,
	})
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to publish command", err.Error())
		return
	}

	respondAccepted(w)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "order_id is required", "")
		return
	}

	ctx := util.WithRequestID(r.Context(), "")
	err := s.publisher.Cancel(ctx, commandv1.CancelPayload{
		ParticipantID: s.config.ParticipantID,
		AssetName:     req.AssetName,
		OrderID:       req.OrderID,
		IsBid:         req.IsBid,
	})
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to publish command", err.Error())
		return
	}

	respondAccepted(w)
}

func (s *Server) handleAcceptOrder(w http.ResponseWriter, r *http.Request) {
	var req AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "order_id is required", "")
		return
	}
	if req.Volume <= 0 {
		respondError(w, http.StatusBadRequest, "volume must be positive", "")
		return
	}

	ctx := util.WithRequestID(r.Context(), "")
	err := s.publisher.AcceptImmediate(ctx, commandv1.AcceptPayload{
		ParticipantID: s.config.ParticipantID,
		AssetName:     req.AssetName,
		OrderID:       req.OrderID,
		Volume:        req.Volume,
	})
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to publish command", err.Error())
		return
	}

	respondAccepted(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{
		"status":      "ok",
		"feed_offset": s.replica.FeedOffset(),
	})
}

func (s *Server) knownAsset(asset string) bool {
	for _, name := range s.config.Assets {
		if name == asset {
			return true
		}
	}
	return false
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
	}
}

func respondAccepted(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(CommandAck{Status: "accepted"})
}

func respondError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details})
}
