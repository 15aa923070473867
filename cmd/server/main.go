// Package main implements the entry point for the boardgen API server,
// which bulk-generates explanatory text for board exam questions and
// builds multiple-choice questions from uploaded PDFs.
package main

import (
	"context"
	"log"
)

func main() {
	ctx := context.Background()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		app.logger.Error("server exited with error", "error", err)
	}
}
