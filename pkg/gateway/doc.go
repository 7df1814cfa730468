// Package gateway provides a reusable BLE broadcast gateway that can be embedded into other Go applications.
//
// # Overview
//
// The gateway exposes a small bearer-token-protected REST API that starts a
// BLE advertisement for a bounded duration on a fixed hardware advertising
// instance, and fires one-shot UDP datagrams. The advertising lifecycle is
// fire-and-forget: POST /broadcast answers 202 Accepted once the request is
// validated and scheduled, and the start/hold/stop sequence runs in the
// background driving the external btmgmt tool.
//
// # Basic Usage
//
// Create a gateway programmatically:
//
//	cfg := &gateway.Config{
//		Server: gateway.ServerConfig{
//			Address:      "0.0.0.0",
//			Port:         15,
//			ReadTimeout:  30 * time.Second,
//			WriteTimeout: 30 * time.Second,
//		},
//		Auth: gateway.AuthConfig{
//			BearerToken: "secret-token-here",
//		},
//		Broadcast: gateway.BroadcastConfig{
//			Instance:       1,
//			CommandTimeout: 10 * time.Second,
//			MaxHold:        time.Hour,
//		},
//		Logging: gateway.LoggingConfig{
//			Level:  "info",
//			Format: "json",
//		},
//	}
//
//	gw, err := gateway.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := gw.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Using with Existing HTTP Server
//
// Integrate the gateway into an existing HTTP server:
//
//	gw, err := gateway.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Mount the gateway under a specific path
//	http.Handle("/ble/", http.StripPrefix("/ble", gw.Handler()))
//
//	http.ListenAndServe(":8080", nil)
//
// # Environment-based Configuration
//
// Load configuration from environment variables (BEARER_TOKEN required,
// optional CONFIG_FILE pointing at a YAML file):
//
//	gw, err := gateway.NewFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := gw.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Direct Controller Access
//
// Access the broadcast controller directly for programmatic control:
//
//	lifecycleID, err := gw.Controller().Broadcast(1, "AABBCC", 5*time.Second)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Scheduled broadcast: %s\n", lifecycleID)
package gateway
