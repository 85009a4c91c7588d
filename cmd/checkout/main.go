package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront-checkout/internal/auth"
	"storefront-checkout/internal/backend"
	"storefront-checkout/internal/card"
	"storefront-checkout/internal/checkout"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/gateway"
	"storefront-checkout/internal/logging"
	"storefront-checkout/internal/metrics"
)

func main() {
	productID := flag.String("product", "1", "product id to buy")
	quantity := flag.Int("quantity", 1, "quantity to buy")
	cardNumber := flag.String("card", "", "card number")
	expiry := flag.String("expiry", "", "card expiry (MM/YY)")
	cvv := flag.String("cvv", "", "card security code")
	holderName := flag.String("name", "", "cardholder name")
	loginToken := flag.String("login-token", "", "magic-link token (log in and exit)")
	loginEmail := flag.String("login-email", "", "magic-link email (log in and exit)")
	flag.Parse()

	config.LoadEnv()
	cfg := config.MustLoadConfig(".")

	logger := logging.GetLogger(cfg.Logs)
	metrics.Setup(cfg.Metrics)

	session, err := auth.NewSession(cfg.Auth.StorePath)
	if err != nil {
		log.Fatalf("Failed to open auth store: %v", err)
	}
	session.OnLogout(func() {
		logger.Warn("Session cleared, log in again with -login-token/-login-email")
	})

	api := backend.New(cfg.Backend, session, logger)
	ctx := context.Background()

	if *loginToken != "" || *loginEmail != "" {
		verified, err := api.VerifyMagicLink(ctx, *loginToken, *loginEmail)
		if err != nil {
			log.Fatalf("Magic link verification failed: %v", err)
		}
		if err := session.Login(verified.AccessToken, verified.User); err != nil {
			log.Fatalf("Failed to store login: %v", err)
		}
		logger.Info("Logged in", "email", verified.User.Email)
		return
	}

	product, err := api.GetProduct(ctx, *productID)
	if err != nil {
		log.Fatalf("Failed to load product: %v", err)
	}
	amount, err := product.Amount()
	if err != nil {
		log.Fatalf("Failed to parse product price: %v", err)
	}

	cc := checkout.Context{
		ProductID:   product.ID,
		SellerID:    product.UserID,
		Quantity:    *quantity,
		TotalAmount: amount * int64(*quantity),
	}

	gateways := func(publicKey string) (checkout.Gateway, error) {
		return gateway.New(cfg.Gateway, publicKey, logger)
	}

	sess := checkout.NewSession(cc, api, gateways, func(orderID string) {
		logger.Info("Order complete", "orderId", orderID, "url", "/success/"+orderID)
	}, logger)

	if err := sess.InitializePayment(ctx); err != nil {
		fail(sess)
	}
	in := card.Input{
		Number:     *cardNumber,
		Expiry:     *expiry,
		CVV:        *cvv,
		HolderName: *holderName,
	}
	if err := sess.ExecutePayment(ctx, in); err != nil {
		fail(sess)
	}
	if err := sess.CapturePayment(ctx); err != nil {
		fail(sess)
	}
}

func fail(sess *checkout.Session) {
	log.Printf("Checkout stopped at step %q: %s", sess.Step(), sess.ErrorMessage())
	os.Exit(1)
}
