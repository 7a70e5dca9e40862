// Command irrl-server runs the Contextual Reputation & Trust Ledger as an
// HTTP service: config.Load wires environment into a ledger.Config, which
// assembles every component service behind transport/httpapi.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crasofuentes-hub/irrl/config"
	"github.com/crasofuentes-hub/irrl/keys"
	"github.com/crasofuentes-hub/irrl/ledger"
	"github.com/crasofuentes-hub/irrl/transport/httpapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		return 1
	}

	signingKey, publicKey, err := instanceKeyPair()
	if err != nil {
		logger.Error("instance key load failed", "error", err)
		return 1
	}

	l, err := ledger.New(ledger.Config{
		SigningKeyPEM: signingKey,
		PublicKeyPEM:  publicKey,
		Issuer:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		EnableAudit:   cfg.EnableAuditLog,
	})
	if err != nil {
		logger.Error("ledger init failed", "error", err)
		return 1
	}

	srv := httpapi.NewServer(l, httpapi.Options{Logger: logger})

	httpServer := &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopSweeper := startExpirySweeper(ctx, l, logger)
	defer stopSweeper()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", "error", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}

// startExpirySweeper runs Ledger.ScanExpired on a fixed interval until ctx
// is cancelled, moving non-terminal attestations past their expiresAt into
// the expired state without requiring a caller to trigger it.
func startExpirySweeper(ctx context.Context, l *ledger.Ledger, logger *slog.Logger) func() {
	ticker := time.NewTicker(5 * time.Minute)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := l.ScanExpired()
				if err != nil {
					logger.Error("expiry sweep failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("expiry sweep", "expired", n)
				}
			}
		}
	}()
	return func() {
		ticker.Stop()
		<-done
	}
}

// instanceKeyPair loads this instance's signing identity from the
// operator-managed keys.KeyStore under the name "instance", creating one
// on first boot so a fresh deployment doesn't need a manual irrl-ctl step
// before it can issue its first proof.
func instanceKeyPair() (signingKeyPEM, publicKeyPEM string, err error) {
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		return "", "", err
	}
	publicKeyPEM, err = ks.ExportKey("instance", "")
	if err == nil {
		seed, serr := ks.LoadSeed("", "instance", "", "")
		if serr != nil {
			return "", "", serr
		}
		kp, kerr := keys.KeyPairFromSeed(seed)
		if kerr != nil {
			return "", "", kerr
		}
		return kp.PrivateKey, kp.PublicKey, nil
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, rerr := rand.Read(seed); rerr != nil {
		return "", "", rerr
	}
	pub, _, ierr := ks.InitializeRootKey("instance", seed, false)
	if ierr != nil {
		return "", "", ierr
	}
	kp, kerr := keys.KeyPairFromSeed(seed)
	if kerr != nil {
		return "", "", kerr
	}
	return kp.PrivateKey, pub, nil
}
