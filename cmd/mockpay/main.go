package main

import (
	"log"
	"net/http"

	"storefront-checkout/internal/config"
	"storefront-checkout/internal/mockpay"
)

func main() {
	config.LoadEnv()

	addr := config.GetOrDefault("MOCKPAY_ADDR", ":3000")
	publicKey := config.GetOrDefault("MOCKPAY_PUBLIC_KEY", "p_test_mock_1234567890")

	srv := mockpay.New(publicKey)

	log.Printf("mockpay listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mockpay.LoggingMiddleware(srv.Handler())))
}
