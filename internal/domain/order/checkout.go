package order

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/cart"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/stock"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/user"
)

// ErrEmptyCart indicates a checkout was attempted on a cart with no items.
var ErrEmptyCart = errors.New("cannot checkout an empty cart")

// CheckoutTx is the set of operations available inside one checkout
// transaction. CartItems reads the cart after the store has serialized the
// user, so the lines it returns are exactly the lines ClearCart later
// deletes. The embedded ledger reservations, the order insert, and the cart
// clear are all durable together or rolled back together.
type CheckoutTx interface {
	stock.Ledger
	CartItems(ctx context.Context, userID int64) ([]cart.Item, error)
	CreateOrder(ctx context.Context, o *Order) error
	ClearCart(ctx context.Context, userID int64) error
}

// CheckoutStore runs fn inside a single atomic transaction scoped to one
// user's checkout. Implementations must serialize concurrent checkouts and
// cart writes for the same user before invoking fn, and must guarantee that
// an external observer never sees stock decremented without the persisted
// order, or vice versa.
type CheckoutStore interface {
	Checkout(ctx context.Context, userID int64, fn func(ctx context.Context, tx CheckoutTx) error) error
}

// CheckoutService converts a user's cart into an immutable priced order.
type CheckoutService struct {
	store   CheckoutStore
	users   user.Repository
	numbers *NumberGenerator
	locks   *cart.UserLocker
	now     func() time.Time
}

// NewCheckoutService creates a CheckoutService. The UserLocker must be shared
// with the cart service so cart mutations cannot race a checkout on the same
// user within this process.
func NewCheckoutService(
	store CheckoutStore,
	users user.Repository,
	numbers *NumberGenerator,
	locks *cart.UserLocker,
) *CheckoutService {
	return &CheckoutService{
		store:   store,
		users:   users,
		numbers: numbers,
		locks:   locks,
		now:     time.Now,
	}
}

// Checkout atomically creates an order from the user's cart: every line is
// reserved against the stock ledger, the order and its items are persisted,
// and the cart is cleared, all as one unit. On any failure no state change
// remains visible. shippingAddress falls back to the user's default when
// empty.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, shippingAddress string) (*Order, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	usr, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	if shippingAddress == "" {
		shippingAddress = usr.ShippingAddress
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generate order number")
	}

	var o *Order
	err = s.store.Checkout(ctx, userID, func(ctx context.Context, tx CheckoutTx) error {
		// The cart is read through the transaction, after the store has
		// taken its per-user lock: a write from another process either
		// lands before the read and gets ordered, or waits until after the
		// clear. Nothing can slip between the read and the clear.
		items, err := tx.CartItems(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "get cart items")
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		// Reservations are taken in ascending product-id order across all
		// concurrent checkouts; the total order prevents deadlock when two
		// checkouts contend for overlapping product sets.
		slices.SortFunc(items, func(a, b cart.Item) int {
			return cmp.Compare(a.ProductID, b.ProductID)
		})

		o = &Order{
			Number:          number,
			UserID:          userID,
			CreatedAt:       s.now(),
			ShippingAddress: shippingAddress,
			Status:          StatusPending,
			Items:           make([]Item, len(items)),
		}
		total := decimal.Zero
		for i, it := range items {
			o.Items[i] = Item{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			}
			total = total.Add(it.Subtotal())
		}
		o.Total = total

		taken := make([]stock.Reservation, 0, len(items))

		// Any failure from here on releases every reservation taken in
		// this attempt before the transaction rolls back, so the ledger
		// contract holds for non-transactional implementations too.
		release := func() {
			for i := len(taken) - 1; i >= 0; i-- {
				if rerr := tx.Release(ctx, taken[i]); rerr != nil {
					zctx.From(ctx).Warn("Release reservation failed",
						zap.Int64("product_id", taken[i].ProductID),
						zap.Error(rerr),
					)
				}
			}
		}

		for _, it := range items {
			res, err := tx.Reserve(ctx, it.ProductID, it.Quantity)
			if err != nil {
				release()
				return err
			}
			taken = append(taken, res)
		}

		if err := tx.CreateOrder(ctx, o); err != nil {
			release()
			return errors.Wrap(err, "create order")
		}

		for _, res := range taken {
			if err := tx.Commit(ctx, res); err != nil {
				release()
				return errors.Wrap(err, "commit reservation")
			}
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			release()
			return errors.Wrap(err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Order created",
		zap.Int64("user_id", userID),
		zap.String("order_number", o.Number),
		zap.String("total", o.Total.String()),
	)
	return o, nil
}
