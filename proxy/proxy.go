// Package proxy exposes the pad export surface. An export request has no
// authoring session of its own, so the proxy mints a short-lived author and
// session through the gateway, attaches the session cookie and forwards the
// request to the editing service.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/google/uuid"

	"bbb-pads/contract"
	"bbb-pads/domain"
	"bbb-pads/etherpad"
)

type Proxy struct {
	log        *slog.Logger
	api        contract.Caller
	addr       string
	sessionTTL time.Duration
	forward    *httputil.ReverseProxy
}

func New(api contract.Caller, target *url.URL, addr string, sessionTTL time.Duration, log *slog.Logger) *Proxy {
	return &Proxy{
		log:        log,
		api:        api,
		addr:       addr,
		sessionTTL: sessionTTL,
		forward:    httputil.NewSingleHostReverseProxy(target),
	}
}

// Run serves the export endpoint until the context ends.
func (p *Proxy) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /p/{padId}/export/{type}", p.export)

	server := &http.Server{Addr: p.addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	p.log.Info("export proxy started", "addr", p.addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	p.log.Info("export proxy stopped")

	return nil
}

func (p *Proxy) export(w http.ResponseWriter, r *http.Request) {
	padID := r.PathValue("padId")
	groupID, _ := domain.SplitPadID(padID)

	sessionID, err := p.grantSession(r.Context(), groupID)
	if err != nil {
		p.log.Error("export session failed", "padId", padID, "error", err)
		http.Error(w, "export unavailable", http.StatusBadGateway)
		return
	}

	r.Header.Set("Cookie", fmt.Sprintf("sessionID=%s", sessionID))
	p.forward.ServeHTTP(w, r)
}

// grantSession mints a throwaway author and a session expiring with the
// regular TTL. Neither is tracked locally: the remote service expires them.
func (p *Proxy) grantSession(ctx context.Context, groupID string) (string, error) {
	author, err := p.api.Call(ctx, "createAuthor", etherpad.Params{"name": uuid.NewString()})
	if err != nil {
		return "", fmt.Errorf("creating export author: %w", err)
	}

	session, err := p.api.Call(ctx, "createSession", etherpad.Params{
		"groupID":    groupID,
		"authorID":   author.String("authorID"),
		"validUntil": time.Now().Add(p.sessionTTL).UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("creating export session: %w", err)
	}

	return session.String("sessionID"), nil
}
