package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"itemMarket/internal/domain/models"
)

var (
	ErrPriceRequired   = errors.New("limit order requires a price")
	ErrUnexpectedPrice = errors.New("market order must not carry a price")
	ErrUnknownSide     = errors.New("unknown order side")
	ErrUnknownKind     = errors.New("unknown order kind")
	ErrAlreadyInBook   = errors.New("order already present in a book")
	ErrOrderNotFound   = errors.New("order not found")
)

// Result is the outcome of one submission: the taker order with its final
// status, plus the maker order and the trade when the submission filled.
type Result struct {
	Taker models.Order
	Maker *models.Order
	Trade *models.Trade
}

func (r Result) Filled() bool {
	return r.Trade != nil
}

// CommitFunc persists the outcome of a submission or cancellation. It runs
// while the item's book lock is still held; returning an error rolls the
// in-memory mutation back, so book and ledger never diverge.
type CommitFunc func(Result) error

// Engine matches incoming orders against per-item order books. Each book is
// the unit of mutual exclusion: submissions and cancellations for one item
// are serialized, different items proceed in parallel.
type Engine struct {
	booksMu sync.RWMutex
	books   map[uuid.UUID]*OrderBook

	indexMu sync.RWMutex
	index   map[uuid.UUID]uuid.UUID // order id -> item id, for cancellation

	seq atomic.Uint64
}

func New() *Engine {
	return &Engine{
		books: make(map[uuid.UUID]*OrderBook),
		index: make(map[uuid.UUID]uuid.UUID),
	}
}

// Submit runs the matching algorithm for one validated order. At most one
// trade is produced per submission; an order that does not fill rests in the
// book. Market orders blocked by self-trade prevention, or finding an empty
// opposite side, rest without a price.
func (e *Engine) Submit(order models.Order, commit CommitFunc) (Result, error) {
	if order.Side != models.SideBuy && order.Side != models.SideSell {
		return Result{}, ErrUnknownSide
	}

	switch order.Kind {
	case models.KindLimit:
		if order.Price == nil {
			return Result{}, ErrPriceRequired
		}
	case models.KindMarket:
		if order.Price != nil {
			return Result{}, ErrUnexpectedPrice
		}
	default:
		return Result{}, ErrUnknownKind
	}

	order.Seq = e.seq.Add(1)

	book := e.book(order.ItemID)
	book.mu.Lock()
	defer book.mu.Unlock()

	if order.Kind == models.KindMarket {
		return e.submitMarket(book, order, commit)
	}
	return e.submitLimit(book, order, commit)
}

// submitMarket looks only at opposite limit orders. The trade executes at the
// maker's resting price.
func (e *Engine) submitMarket(book *OrderBook, order models.Order, commit CommitFunc) (Result, error) {
	maker := book.bestLimit(order.Side.Opposite())
	if maker == nil || maker.UserID == order.UserID {
		return e.rest(book, order, commit)
	}

	return e.execute(book, order, maker.ID, *maker.Price, commit)
}

// submitLimit prefers the earliest opposite market order, trading at the
// submitted limit price; otherwise it falls back to the best crossing
// opposite limit, trading at the maker's price. Only the single best
// candidate of each step is considered: a self-trade block on it does not
// skip to the next-best candidate.
func (e *Engine) submitLimit(book *OrderBook, order models.Order, commit CommitFunc) (Result, error) {
	opposite := order.Side.Opposite()

	if maker := book.firstMarket(opposite); maker != nil && maker.UserID != order.UserID {
		return e.execute(book, order, maker.ID, *order.Price, commit)
	}

	if maker := book.bestCrossingLimit(opposite, *order.Price); maker != nil && maker.UserID != order.UserID {
		return e.execute(book, order, maker.ID, *maker.Price, commit)
	}

	return e.rest(book, order, commit)
}

func (e *Engine) rest(book *OrderBook, order models.Order, commit CommitFunc) (Result, error) {
	order.Status = models.OrderStatusResting

	stored := order
	if err := e.register(book, &stored); err != nil {
		return Result{}, err
	}

	result := Result{Taker: order}
	if err := commit(result); err != nil {
		e.unregister(book, stored.ID)
		return Result{}, err
	}

	return result, nil
}

func (e *Engine) execute(
	book *OrderBook,
	taker models.Order,
	makerID uuid.UUID,
	price decimal.Decimal,
	commit CommitFunc,
) (Result, error) {
	removed, _ := e.unregister(book, makerID)

	taker.Status = models.OrderStatusMatched
	maker := *removed
	maker.Status = models.OrderStatusMatched

	buyerID, sellerID := taker.UserID, maker.UserID
	if taker.Side == models.SideSell {
		buyerID, sellerID = maker.UserID, taker.UserID
	}

	trade := &models.Trade{
		ID:         uuid.New(),
		BuyerID:    buyerID,
		SellerID:   sellerID,
		ItemID:     taker.ItemID,
		Price:      price,
		ExecutedAt: time.Now().UTC(),
	}

	result := Result{Taker: taker, Maker: &maker, Trade: trade}
	if err := commit(result); err != nil {
		_ = e.register(book, removed)
		return Result{}, err
	}

	return result, nil
}

// Cancel removes a resting order. A non-resting or unknown id reports
// ErrOrderNotFound, as does an id owned by a different user; callers with
// uuid.Nil as userID skip the ownership check.
func (e *Engine) Cancel(orderID, userID uuid.UUID, commit func(models.Order) error) (models.Order, error) {
	e.indexMu.RLock()
	itemID, found := e.index[orderID]
	e.indexMu.RUnlock()
	if !found {
		return models.Order{}, ErrOrderNotFound
	}

	book := e.book(itemID)
	book.mu.Lock()
	defer book.mu.Unlock()

	stored, found := book.get(orderID)
	if !found {
		return models.Order{}, ErrOrderNotFound
	}
	if userID != uuid.Nil && stored.UserID != userID {
		return models.Order{}, ErrOrderNotFound
	}

	removed, _ := e.unregister(book, orderID)

	cancelled := *removed
	cancelled.Status = models.OrderStatusCancelled

	if err := commit(cancelled); err != nil {
		_ = e.register(book, removed)
		return models.Order{}, err
	}

	return cancelled, nil
}

// ListOrders returns the resting orders of one item in arrival order,
// optionally filtered by submitter (uuid.Nil means all users).
func (e *Engine) ListOrders(itemID, userID uuid.UUID) []models.Order {
	book := e.book(itemID)
	book.mu.Lock()
	defer book.mu.Unlock()

	return book.list(userID)
}

func (e *Engine) book(itemID uuid.UUID) *OrderBook {
	e.booksMu.RLock()
	book, found := e.books[itemID]
	e.booksMu.RUnlock()
	if found {
		return book
	}

	e.booksMu.Lock()
	defer e.booksMu.Unlock()

	if book, found := e.books[itemID]; found {
		return book
	}

	book = newOrderBook(itemID)
	e.books[itemID] = book
	return book
}

// register inserts a resting order into the book and the cross-book index.
// An order may be a member of at most one book at a time.
func (e *Engine) register(book *OrderBook, order *models.Order) error {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()

	if _, exists := e.index[order.ID]; exists {
		return ErrAlreadyInBook
	}

	book.insert(order)
	e.index[order.ID] = book.itemID
	return nil
}

func (e *Engine) unregister(book *OrderBook, orderID uuid.UUID) (*models.Order, bool) {
	order, found := book.removeByID(orderID)
	if !found {
		return nil, false
	}

	e.indexMu.Lock()
	delete(e.index, orderID)
	e.indexMu.Unlock()

	return order, true
}
