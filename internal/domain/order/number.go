package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// numberAttempts bounds the collision retries. The 8-hex-char token space is
// large enough that hitting the bound means something is badly wrong.
const numberAttempts = 5

// NumberChecker reports whether an order number is already taken.
type NumberChecker interface {
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// NumberGenerator produces human-readable order numbers of the form
// ORD-YYYYMMDD-XXXXXXXX. The random token alone gives only probabilistic
// uniqueness, so each candidate is checked against existing orders before
// use; the UNIQUE constraint on the column is the hard backstop.
type NumberGenerator struct {
	orders NumberChecker
	now    func() time.Time
	token  func() string
}

// NewNumberGenerator creates a NumberGenerator backed by the given checker.
func NewNumberGenerator(orders NumberChecker) *NumberGenerator {
	return &NumberGenerator{
		orders: orders,
		now:    time.Now,
		token:  randomToken,
	}
}

// Next returns an order number not currently in use.
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	date := g.now().Format("20060102")

	for range numberAttempts {
		number := fmt.Sprintf("ORD-%s-%s", date, g.token())

		taken, err := g.orders.ExistsByNumber(ctx, number)
		if err != nil {
			return "", errors.Wrap(err, "check order number")
		}
		if !taken {
			return number, nil
		}
	}
	return "", errors.Errorf("could not generate a unique order number in %d attempts", numberAttempts)
}

func randomToken() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
