package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"github.com/weiwangfds/pdftoolkit/internal/router"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// shutdownTimeout 优雅关闭的最长等待时间
const shutdownTimeout = 30 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动HTTP服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close(db)

	r, err := router.NewRouter(db, cfg)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv, err := newServer(cfg.Server, r.GetEngine())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv, cfg.Server)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("服务器已退出")
	return nil
}

// newServer 按配置创建HTTP或HTTPS服务器
// HTTPS下通过ALPN协商HTTP/2，明文HTTP下使用h2c
func newServer(cfg config.ServerConfig, handler http.Handler) (*http.Server, error) {
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	if !cfg.EnableHTTPS {
		if cfg.EnableHTTP2 {
			srv.Handler = h2c.NewHandler(handler, &http2.Server{})
		}
		return srv, nil
	}

	srv.Addr = ":" + strconv.Itoa(cfg.HTTPSPort)
	srv.TLSConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}
	if cfg.EnableHTTP2 {
		if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
			return nil, fmt.Errorf("配置HTTP/2失败: %w", err)
		}
	}
	return srv, nil
}

func listen(srv *http.Server, cfg config.ServerConfig) error {
	var err error
	if cfg.EnableHTTPS {
		logger.Infof("HTTPS服务器启动在 %s (HTTP/2: %v)", srv.Addr, cfg.EnableHTTP2)
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		logger.Infof("HTTP服务器启动在 %s (h2c: %v)", srv.Addr, cfg.EnableHTTP2)
		err = srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
