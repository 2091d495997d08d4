// Command smoke walks the full shopping flow against a live backend:
// guest cart, quantity edits, coupon, login merge, and checkout. It is a
// manual end-to-end check, not part of the test suite.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oakmart/storefront-go/internal/address"
	"github.com/oakmart/storefront-go/internal/cart"
	"github.com/oakmart/storefront-go/internal/checkout"
	"github.com/oakmart/storefront-go/internal/discount"
	"github.com/oakmart/storefront-go/internal/orders"
	"github.com/oakmart/storefront-go/internal/session"
	"github.com/oakmart/storefront-go/internal/wishlist"
	"github.com/oakmart/storefront-go/pkg/api"
	"github.com/oakmart/storefront-go/pkg/config"
	"github.com/oakmart/storefront-go/pkg/enums"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/metrics"
	"github.com/oakmart/storefront-go/pkg/tokenstore"
	"github.com/oakmart/storefront-go/pkg/types"
)

func main() {
	variantFlag := flag.String("variant", "", "variant id to add to the cart")
	emailFlag := flag.String("email", "", "account email for the login step")
	passwordFlag := flag.String("password", "", "account password for the login step")
	couponFlag := flag.String("coupon", "", "coupon code to apply, optional")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "smoke"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "smoke",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	variantID, err := uuid.Parse(*variantFlag)
	if err != nil {
		logg.Error(ctx, "a valid -variant id is required", err)
		os.Exit(1)
	}

	var tokens tokenstore.Store
	if cfg.Redis.Enabled() {
		redisStore, err := tokenstore.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis token store", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
		tokens = redisStore
	} else {
		tokens = tokenstore.NewMemory()
	}

	apiMetrics := metrics.NewAPIMetrics(prometheus.NewRegistry())
	client, err := api.NewClient(cfg.API, logg, apiMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create api client", err)
		os.Exit(1)
	}

	ses, err := session.NewProvider(ctx, session.ProviderParams{
		SessionKey: uuid.NewString(),
		Tokens:     tokens,
		TokenTTL:   cfg.Session.GuestTokenTTL(),
		API:        client,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session", err)
		os.Exit(1)
	}
	client.SetCredentialSource(ses)

	cartStore, err := cart.NewStore(client, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cart store", err)
		os.Exit(1)
	}
	ses.SetMergeHook(cartStore.MergeOnLogin)

	coupons, err := discount.NewEngine(client, logg)
	if err != nil {
		logg.Error(ctx, "failed to create discount engine", err)
		os.Exit(1)
	}

	addressBook, err := address.NewBook(client, logg)
	if err != nil {
		logg.Error(ctx, "failed to create address book", err)
		os.Exit(1)
	}

	history, err := orders.NewHistory(client, logg)
	if err != nil {
		logg.Error(ctx, "failed to create order history", err)
		os.Exit(1)
	}

	savedForLater, err := wishlist.NewService(client, cartStore, logg)
	if err != nil {
		logg.Error(ctx, "failed to create wishlist service", err)
		os.Exit(1)
	}

	resolver, err := checkout.NewResolver(cartStore, coupons, ses, client, logg)
	if err != nil {
		logg.Error(ctx, "failed to create checkout resolver", err)
		os.Exit(1)
	}

	// Guest flow: empty fetch, save to wishlist, move to cart, bump quantity.
	if _, err := cartStore.Fetch(ctx); err != nil {
		logg.Error(ctx, "initial cart fetch failed", err)
		os.Exit(1)
	}

	variant, err := client.GetVariant(ctx, variantID)
	if err != nil {
		logg.Error(ctx, "variant lookup failed", err)
		os.Exit(1)
	}

	if err := savedForLater.Add(ctx, *variant); err != nil {
		logg.Error(ctx, "wishlist add failed", err)
		os.Exit(1)
	}
	if err := savedForLater.MoveToCart(ctx, variant.ID); err != nil {
		logg.Error(ctx, "wishlist move to cart failed", err)
		os.Exit(1)
	}

	updated := cartStore.Cart()
	if updated == nil || updated.IsEmpty() {
		logg.Error(ctx, "cart unexpectedly empty after move to cart", nil)
		os.Exit(1)
	}
	line := updated.Items[len(updated.Items)-1]
	logg.Info(logg.WithCartID(ctx, updated.ID.String()), "item added as guest")

	if err := cartStore.SetQuantity(ctx, line.ID, 2); err != nil {
		logg.Error(ctx, "quantity update failed", err)
		os.Exit(1)
	}

	if *couponFlag != "" {
		amount, err := coupons.Apply(ctx, *couponFlag, cartStore.Subtotal())
		if err != nil {
			logg.Warn(logg.WithField(ctx, "coupon", *couponFlag), "coupon rejected, continuing without it")
		} else {
			logg.Info(logg.WithField(ctx, "discount", amount.String()), "coupon applied")
		}
	}

	// Login merges the guest cart into the account cart.
	if *emailFlag != "" && *passwordFlag != "" {
		creds := session.Credentials{Email: *emailFlag, Password: *passwordFlag}
		if err := ses.Login(ctx, creds); err != nil {
			logg.Error(ctx, "login failed", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "items", cartStore.ItemCount()), "cart merged after login")

		if _, err := addressBook.Refresh(ctx); err != nil {
			logg.Error(ctx, "address refresh failed", err)
			os.Exit(1)
		}
	}

	sub := checkout.Submission{Notes: "smoke run, do not ship"}
	if ses.CurrentIdentity() == enums.IdentityAuthenticated && addressBook.Selected() != nil {
		sub.AddressID = addressBook.Selected()
	} else {
		sub.Address = &types.InlineAddress{
			Name:        "Smoke Test",
			Phone:       "+15550100",
			FullAddress: "1 Test Lane",
			Country:     "US",
			District:    "Kings",
		}
	}

	order, err := resolver.Submit(ctx, sub)
	if err != nil {
		logg.Error(ctx, "checkout failed", err)
		os.Exit(1)
	}
	history.Record(*order)

	ctx = logg.WithField(ctx, "order_number", order.OrderNumber)
	ctx = logg.WithField(ctx, "total", order.Total.String())
	logg.Info(ctx, "smoke run completed")
}
