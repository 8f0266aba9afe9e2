package basket

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-basket/internal/catalog"
	kafkax "github.com/ariefcatur/go-basket/internal/kafka"
	"github.com/ariefcatur/go-basket/internal/metrics"
	"github.com/ariefcatur/go-basket/internal/session"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Facade is the single entry point for basket operations. Authenticated callers work
// on the durable user basket only; everyone else on their session basket only.
// Nothing is merged between the two when a session logs in.
type Facade struct {
	Catalog   ProductFinder
	Users     UserBaskets
	BasketKey string // session key holding the anonymous basket

	Added   Publisher // nil disables events
	Removed Publisher
	Metrics *metrics.BasketMetrics
	Log     *zap.Logger
	Service string
	Now     func() time.Time
}

func (f *Facade) View(ctx context.Context, id Identity) (View, error) {
	st, err := f.open(id)
	if err != nil {
		return View{}, err
	}
	// a first visit creates the empty session basket; keep it
	if err := st.Commit(ctx); err != nil {
		return View{}, err
	}
	return f.view(ctx, st)
}

// AddItem adds quantity units of the product and returns the updated view. created
// reports whether the product was new to the basket.
func (f *Facade) AddItem(ctx context.Context, id Identity, productID int64, quantity int) (v View, created bool, err error) {
	if !validQuantity(quantity) {
		return View{}, false, ErrInvalidQuantity
	}
	st, err := f.open(id)
	if err != nil {
		return View{}, false, err
	}
	defer func() { f.observe("add", st.Kind(), err) }()

	p, err := f.Catalog.Get(ctx, productID)
	if err != nil {
		f.fail("lookup product", st, productID, err)
		return View{}, false, err
	}
	if created, err = st.Add(ctx, p, quantity); err != nil {
		f.fail("add item", st, productID, err)
		return View{}, false, err
	}
	if err = st.Commit(ctx); err != nil {
		f.fail("commit basket", st, productID, err)
		return View{}, false, err
	}
	f.logger().Debug("basket item added", zap.String("store", st.Kind()),
		zap.Int64("product_id", productID), zap.Int("quantity", quantity), zap.Bool("created", created))
	f.publish(f.Added, EventBasketItemAdded, st, id.TraceID, productID, quantity)

	v, err = f.view(ctx, st)
	return v, created, err
}

// RemoveItem takes quantity units of the product out of the basket. On the user basket an
// over-removal is rejected with *RejectionError; on the session basket it empties the line.
func (f *Facade) RemoveItem(ctx context.Context, id Identity, productID int64, quantity int) (v View, err error) {
	if !validQuantity(quantity) {
		return View{}, ErrInvalidQuantity
	}
	st, err := f.open(id)
	if err != nil {
		return View{}, err
	}
	defer func() { f.observe("remove", st.Kind(), err) }()

	if err = st.Remove(ctx, productID, quantity); err != nil {
		f.fail("remove item", st, productID, err)
		return View{}, err
	}
	if err = st.Commit(ctx); err != nil {
		f.fail("commit basket", st, productID, err)
		return View{}, err
	}
	f.logger().Debug("basket item removed", zap.String("store", st.Kind()),
		zap.Int64("product_id", productID), zap.Int("quantity", quantity))
	f.publish(f.Removed, EventBasketItemRemoved, st, id.TraceID, productID, quantity)

	return f.view(ctx, st)
}

func validQuantity(q int) bool { return q >= 1 && q <= MaxQuantity }

func (f *Facade) open(id Identity) (Store, error) {
	if id.Authenticated() {
		return &userStore{userID: id.UserID, repo: f.Users, cat: f.Catalog}, nil
	}
	if id.Session == nil {
		return nil, ErrNoSession
	}
	b, err := OpenSessionBasket(id.Session, f.BasketKey)
	if errors.Is(err, session.ErrInvalidPayload) {
		f.logger().Warn("discarding unreadable session basket",
			zap.String("session_id", id.Session.ID()), zap.Error(err))
		b = ResetSessionBasket(id.Session, f.BasketKey)
	} else if err != nil {
		return nil, err
	}
	return &sessionStore{b: b, h: id.Session, cat: f.Catalog, now: f.now}, nil
}

func (f *Facade) view(ctx context.Context, st Store) (View, error) {
	c, err := st.Contents(ctx)
	if err != nil {
		return View{}, err
	}
	return Project(c, f.now()), nil
}

func (f *Facade) publish(p Publisher, eventType string, st Store, traceID string, productID int64, quantity int) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   f.now().UTC(),
		Producer:     f.Service,
		TraceID:      traceID,
		Payload: kafkax.MustMarshal(ItemChangedPayload{
			Store: st.Kind(), OwnerID: st.Owner(), ProductID: productID, Quantity: quantity,
		}),
	}
	p.Publish([]byte(st.Owner()), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// fail logs errors that are not the caller's fault.
func (f *Facade) fail(msg string, st Store, productID int64, err error) {
	if IsClientError(err) {
		return
	}
	f.logger().Error(msg, zap.String("store", st.Kind()), zap.Int64("product_id", productID), zap.Error(err))
}

func (f *Facade) observe(op, store string, err error) {
	outcome := "ok"
	var rej *RejectionError
	switch {
	case err == nil:
	case errors.As(err, &rej):
		outcome = "rejected"
	case errors.Is(err, ErrItemNotFound), errors.Is(err, catalog.ErrProductNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	f.Metrics.Observe(op, store, outcome)
}

func (f *Facade) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}

func (f *Facade) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// IsClientError reports whether err describes a bad request rather than a server fault.
func IsClientError(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, catalog.ErrProductNotFound)
}
