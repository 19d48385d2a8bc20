// Command sessiongate-probe drives login and guard passes against a backend and
// reports every render decision plus a final metrics snapshot.
//
// With no -backend-url (or SG_BACKEND_URL) a stub backend is started in-process,
// and with no -redis-addr (or SG_REDIS_ADDR) the persistent scope falls back to
// miniredis, so the probe runs with zero external infrastructure:
//
//	go run ./cmd/sessiongate-probe -passes 3 -debug
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/sessiongate"
	"github.com/MrEthical07/sessiongate/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

type envConfig struct {
	BackendURL string `env:"SG_BACKEND_URL"`
	RedisAddr  string `env:"SG_REDIS_ADDR"`
	Email      string `env:"SG_EMAIL,default=admin@example.com"`
	Password   string `env:"SG_PASSWORD,default=admin123"`
}

type printRenderer struct{}

func (printRenderer) ShowLoginPrompt(reason string) {
	fmt.Printf("render: login-prompt (%s)\n", reason)
}

func (printRenderer) ShowProtected() {
	fmt.Println("render: protected")
}

func main() {
	var env envConfig
	if err := envdecode.Decode(&env); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		fmt.Fprintf(os.Stderr, "env config: %v\n", err)
		os.Exit(2)
	}

	var (
		backendURL     = flag.String("backend-url", env.BackendURL, "backend base URL; if empty, a stub backend is started in-process")
		redisAddr      = flag.String("redis-addr", env.RedisAddr, "redis address for the persistent scope; if empty, miniredis is used")
		storeFile      = flag.String("store-file", "", "file path for the persistent scope; overrides redis")
		email          = flag.String("email", env.Email, "login email")
		password       = flag.String("password", env.Password, "login password")
		passes         = flag.Int("passes", 2, "guard passes to run after login")
		validateOnLoad = flag.Bool("validate-on-load", true, "re-check the token with the backend on every pass")
		debug          = flag.Bool("debug", false, "emit the decision trace for every pass")
	)
	flag.Parse()

	if *passes < 0 {
		fmt.Fprintln(os.Stderr, "passes must be >= 0")
		os.Exit(2)
	}

	ctx := context.Background()

	baseURL := *backendURL
	if baseURL == "" {
		stub, stop, err := startStubBackend()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start stub backend: %v\n", err)
			os.Exit(1)
		}
		defer stop()
		baseURL = stub
		fmt.Printf("using stub backend at %s\n", baseURL)
	} else {
		fmt.Printf("using backend at %s\n", baseURL)
	}

	cfg := sessiongate.DefaultConfig()
	cfg.Backend.BaseURL = baseURL
	cfg.Guard.ValidateOnLoad = *validateOnLoad
	cfg.Guard.DebugLogging = *debug
	cfg.Metrics.EnableLatencyHistograms = true

	builder := sessiongate.New().
		WithConfig(cfg).
		WithRenderer(printRenderer{}).
		WithRefreshFunc(func(context.Context) {
			fmt.Println("data refresh requested")
		}).
		WithAuditSink(sessiongate.NewJSONWriterSink(os.Stdout))

	cleanup, err := wirePersistentScope(builder, *storeFile, *redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "persistent scope: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	// cold pass: fresh state should prompt for login
	if _, err := engine.RunGuard(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "initial guard pass: %v\n", err)
	}

	decision, err := engine.SubmitLogin(ctx, sessiongate.Credentials{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("login decision: target=%s reason=%s refresh=%t\n",
		decision.Target, decision.Reason, decision.DataRefresh)

	for i := 0; i < *passes; i++ {
		d, err := engine.RunGuard(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "guard pass %d: %v\n", i+1, err)
			continue
		}
		fmt.Printf("pass %d: target=%s source=%s reason=%s\n", i+1, d.Target, d.Source, d.Reason)
	}

	if _, err := engine.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
	}

	printSnapshot(engine.MetricsSnapshot())
}

func wirePersistentScope(builder *sessiongate.Builder, storeFile, redisAddr string) (func(), error) {
	if storeFile != "" {
		fs, err := store.NewFileStore(storeFile)
		if err != nil {
			return nil, err
		}
		builder.WithPersistentStore(fs)
		fmt.Printf("using file store at %s\n", storeFile)
		return func() {}, nil
	}

	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		builder.WithRedis(client)
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	builder.WithRedis(client)
	fmt.Printf("using redis at %s\n", redisAddr)
	return func() { _ = client.Close() }, nil
}

// startStubBackend serves the three auth endpoints on a loopback listener. Any
// credentials are accepted; validate recognizes only tokens it issued.
func startStubBackend() (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	issued := make(map[string]bool)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		tok := "tok-" + uuid.NewString()
		issued[tok] = true

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": tok,
			"user": map[string]any{
				"id":       1,
				"username": strings.SplitN(body.Email, "@", 2)[0],
				"email":    body.Email,
				"isAdmin":  true,
			},
		})
	})
	mux.HandleFunc("GET /api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !issued[tok] {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"valid": true,
			"user":  map[string]any{"id": 1, "username": "admin", "email": "admin@example.com", "isAdmin": true},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		delete(issued, tok)
		w.WriteHeader(http.StatusNoContent)
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = server.Serve(listener) }()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}

	return "http://" + listener.Addr().String(), stop, nil
}

func printSnapshot(snapshot sessiongate.MetricsSnapshot) {
	fmt.Println("---- metrics ----")
	fmt.Printf("guard passes:        %d (stale %d)\n",
		snapshot.Counters[sessiongate.MetricGuardPass],
		snapshot.Counters[sessiongate.MetricGuardPassStale])
	fmt.Printf("protected renders:   %d\n", snapshot.Counters[sessiongate.MetricGuardProtected])
	fmt.Printf("login prompts:       %d\n", snapshot.Counters[sessiongate.MetricGuardLoginPrompt])
	fmt.Printf("logins:              %d ok / %d failed\n",
		snapshot.Counters[sessiongate.MetricLoginSuccess],
		snapshot.Counters[sessiongate.MetricLoginFailure])
	fmt.Printf("validations:         %d ok / %d rejected / %d unreachable\n",
		snapshot.Counters[sessiongate.MetricValidateSuccess],
		snapshot.Counters[sessiongate.MetricValidateRejected],
		snapshot.Counters[sessiongate.MetricValidateUnreachable])
	if buckets, ok := snapshot.Histograms[sessiongate.MetricValidateLatency]; ok {
		fmt.Printf("validate latency buckets: %v\n", buckets)
	}
}
