package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	insights "github.com/goliatone/go-workforce-insights"
	"github.com/goliatone/go-workforce-insights/internal/config"
	"github.com/goliatone/go-workforce-insights/internal/web"
	"github.com/goliatone/go-workforce-insights/pkg/client"
	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/prediction"
	"github.com/goliatone/go-workforce-insights/pkg/view"
)

func main() {
	cfg, err := config.Resolve(os.Args[0], os.Args[1:], nil)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	contracts, err := insights.LoadContracts(ctx, cfg.ContractOptions()...)
	if err != nil {
		log.Fatalf("contracts: %v", err)
	}
	forms, err := insights.BuildForms(contracts)
	if err != nil {
		log.Fatalf("forms: %v", err)
	}

	predictor := client.New(append(cfg.ClientOptions(), client.WithLogger(log.Default()))...)
	dashOptions := append(cfg.DashboardOptions(contracts), dashboard.WithLogger(log.Default()))
	store := dashboard.NewStore(
		insights.NewFactory(predictor, dashOptions...),
		cfg.StoreOptions()...,
	)
	go store.Run(ctx, 0)

	var htmlOptions []view.HTMLOption
	if cfg.Server.TemplatesDir != "" {
		htmlOptions = append(htmlOptions, view.WithTemplatesDir(cfg.Server.TemplatesDir))
	}
	renderers, err := view.NewDefaultRegistry(htmlOptions...)
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	server, err := web.New(store, forms,
		web.WithRenderers(renderers),
		web.WithTheme(cfg.Theme.Name, cfg.Theme.Variant),
		web.WithLogger(log.Default()),
	)
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Handler(),
	}

	urls := cfg.ServiceURLs()
	for _, service := range prediction.Services() {
		log.Printf("%s -> %s", service.Label(), urls[service])
	}
	log.Printf("listening on %s (theme %s/%s)", cfg.Server.Addr, cfg.Theme.Name, cfg.Theme.Variant)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Fatalf("listen: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
