package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	serviceErrors "itemMarket/internal/errors/service"
	zapLogger "itemMarket/internal/logger/zap"
)

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var request createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.catalog.CreateItem(r.Context(), request.Name, request.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, itemToResponse(item))
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.ListItems(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemToResponse(item))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var request createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.catalog.CreateUser(r.Context(), request.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userToResponse(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.catalog.ListUsers(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, userToResponse(user))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var request submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemID, err := parseUUID("item_id", request.ItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := parseUUID("user_id", request.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	side, err := parseSide(request.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind, err := parseKind(request.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	price, err := parsePrice(request.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.exchange.SubmitOrder(r.Context(), itemID, userID, side, kind, price)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	response := submitOrderResponse{Order: orderToResponse(result.Order)}
	if result.Trade != nil {
		trade := tradeToResponse(*result.Trade)
		response.Trade = &trade
	}

	writeJSON(w, http.StatusCreated, response)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseUUID("order_id", mux.Vars(r)["order_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := parseUUID("user_id", r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cancelled, err := s.exchange.CancelOrder(r.Context(), orderID, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orderToResponse(cancelled))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseUUID("item_id", r.URL.Query().Get("item_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := parseOptionalUUID("user_id", r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := s.exchange.ListOrders(r.Context(), itemID, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderToResponse(order))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseOptionalUUID("item_id", r.URL.Query().Get("item_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, err := s.exchange.ListTrades(r.Context(), itemID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]tradeResponse, 0, len(trades))
	for _, trade := range trades {
		out = append(out, tradeToResponse(trade))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, serviceErrors.ErrItemNotFound),
		errors.Is(err, serviceErrors.ErrUserNotFound),
		errors.Is(err, serviceErrors.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, unwrapMessage(err))
	case errors.Is(err, serviceErrors.ErrInvalidOrder),
		errors.Is(err, serviceErrors.ErrInvalidItem),
		errors.Is(err, serviceErrors.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, unwrapMessage(err))
	case errors.Is(err, serviceErrors.ErrRateLimitExceeded):
		writeError(w, http.StatusTooManyRequests, unwrapMessage(err))
	default:
		zapLogger.Error(r.Context(), "request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// unwrapMessage strips the op prefixes so clients see the sentinel text only.
func unwrapMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
