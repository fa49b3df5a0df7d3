package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"itemMarket/internal/domain/models"
	"itemMarket/internal/services/exchange"
)

const shutdownTimeout = 10 * time.Second

type ExchangeService interface {
	SubmitOrder(ctx context.Context, itemID, userID uuid.UUID, side models.Side, kind models.Kind, price *decimal.Decimal) (exchange.OrderResult, error)
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (models.Order, error)
	ListOrders(ctx context.Context, itemID, userID uuid.UUID) ([]models.Order, error)
	ListTrades(ctx context.Context, itemID uuid.UUID) ([]models.Trade, error)
}

type CatalogService interface {
	CreateItem(ctx context.Context, name, description string) (models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	CreateUser(ctx context.Context, name string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type Server struct {
	exchange ExchangeService
	catalog  CatalogService

	httpServer *http.Server
}

func NewServer(
	address string,
	exchangeService ExchangeService,
	catalogService CatalogService,
	gatherer prometheus.Gatherer,
	corsOrigins []string,
) *Server {
	s := &Server{
		exchange: exchangeService,
		catalog:  catalogService,
	}

	router := mux.NewRouter()
	router.Use(RequestID, Logging, Recovery)

	router.HandleFunc("/items/", s.handleCreateItem).Methods(http.MethodPost)
	router.HandleFunc("/items/", s.handleListItems).Methods(http.MethodGet)
	router.HandleFunc("/users/", s.handleCreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users/", s.handleListUsers).Methods(http.MethodGet)
	router.HandleFunc("/orders/", s.handleSubmitOrder).Methods(http.MethodPost)
	router.HandleFunc("/orders/", s.handleListOrders).Methods(http.MethodGet)
	router.HandleFunc("/orders/{order_id}", s.handleCancelOrder).Methods(http.MethodDelete)
	router.HandleFunc("/trades/", s.handleListTrades).Methods(http.MethodGet)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", requestIDHeader},
		AllowCredentials: true,
	})

	s.httpServer = &http.Server{
		Addr:    address,
		Handler: corsHandler.Handler(router),
	}

	return s
}

func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
