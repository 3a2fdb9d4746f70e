// Command seed-db loads a demo sports catalog, a demo user with an empty
// cart, and an API key for that user into the database.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/storage/postgres"
)

type seedProduct struct {
	description string
	price       string
	quantity    int
	category    string
	imagePath   string
}

var catalog = []seedProduct{
	{"Balón de fútbol profesional", "29.99", 50, "futbol", "images/balon-futbol.jpg"},
	{"Zapatillas de running", "89.90", 30, "running", "images/zapatillas-running.jpg"},
	{"Raqueta de tenis", "119.50", 15, "tenis", "images/raqueta-tenis.jpg"},
	{"Mancuernas 10kg (par)", "45.00", 25, "fitness", "images/mancuernas-10kg.jpg"},
	{"Camiseta técnica", "19.99", 100, "ropa", "images/camiseta-tecnica.jpg"},
	{"Bicicleta de montaña", "549.00", 5, "ciclismo", "images/bici-montana.jpg"},
}

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or DEPORTES_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or DEPORTES_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if apiKey == "" {
		apiKey = os.Getenv("DEPORTES_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("DEPORTES_API_KEY_PEPPER")
	}
	if databaseURL == "" || apiKey == "" {
		slog.Error("database URL and API key are required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete", "products", len(catalog))
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	var userID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, full_name, shipping_address)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
		RETURNING id`,
		"demo@deportes.test", "Usuario Demo", "Calle Mayor 1, Madrid",
	).Scan(&userID)
	if err != nil {
		return errors.Wrap(err, "seed user")
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return errors.Wrap(err, "seed cart")
	}

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, `
		INSERT INTO api_keys (key_hash, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (key_hash) DO NOTHING`, keyHash, userID, "demo"); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	for _, p := range catalog {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return errors.Wrapf(err, "parse price for %q", p.description)
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO products (description, price, available_quantity, category, image_path)
			VALUES ($1, $2, $3, $4, $5)`,
			p.description, price, p.quantity, p.category, p.imagePath); err != nil {
			return errors.Wrapf(err, "seed product %q", p.description)
		}
	}

	return nil
}
