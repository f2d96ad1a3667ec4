package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heimgewebe/lenskit/internal/api"
	"github.com/heimgewebe/lenskit/internal/config"
	"github.com/heimgewebe/lenskit/internal/fsview"
	"github.com/heimgewebe/lenskit/internal/retrieval"
	"github.com/heimgewebe/lenskit/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.AllowlistRoots) == 0 {
		log.Printf("lenskit: no allowlist roots configured (set RLENS_ALLOWLIST_ROOTS); navigation limited to the root capability")
	}

	sec := security.NewConfig(cfg.AllowlistRoots, cfg.Host, cfg.SigningSecret(), cfg.DevMode)
	if allowed, reason := sec.RootBrowsing(); allowed {
		log.Printf("lenskit: root browsing enabled (loopback bind, auth secret configured)")
	} else {
		log.Printf("lenskit: %s", reason)
	}
	if !sec.HasSecret() && !cfg.DevMode {
		log.Printf("lenskit: no signing secret configured (RLENS_FS_TOKEN_SECRET or RLENS_TOKEN); token issuance disabled")
	}

	issuer := security.NewIssuer(sec, cfg.TokenTTL)
	lister := fsview.NewOSLister()

	indexStore := retrieval.NewStore(cfg.DataDir)
	defer indexStore.Close()
	log.Printf("lenskit: retrieval index directory: %s", cfg.DataDir)

	server := api.NewServer(issuer, sec, lister, indexStore, cfg.AuthToken)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Printf("lenskit: starting server on %s (roots=%d, ttl=%s)", addr, len(cfg.AllowlistRoots), cfg.TokenTTL)

	go func() {
		if err := server.Start(addr); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("lenskit: shutting down...")
	if err := server.Close(); err != nil {
		log.Printf("error closing server: %v", err)
	}
}
