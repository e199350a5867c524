package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "LITS-backend/docs"
	"LITS-backend/internal/instrument/history"
	"LITS-backend/internal/instrument/inout"
	"LITS-backend/internal/instrument/labels"
	"LITS-backend/internal/instrument/registry"
	"LITS-backend/internal/platform/auth"
	"LITS-backend/internal/platform/db"
	"LITS-backend/internal/platform/notify"
)

// フロントのビルド出力を埋め込む

//go:embed public
var embedded embed.FS

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	// 日付境界の基準タイムゾーン
	loc, err := cfg.Location()
	if err != nil {
		panic(err)
	}
	log.Printf("[INFO] day boundary timezone: %s", loc)

	// records-changed 通知（Redis未設定なら nil のまま＝通知なし）
	notifier := notify.NewPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
	if notifier != nil {
		defer notifier.Close()
		log.Printf("[INFO] records-changed notifications on %s (%s)", cfg.Redis.Addr, cfg.Redis.Channel)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := []byte(cfg.Auth.JWTSecret)

	// /api/v2: ログイン以外は認証必須、変更系の管理機能は admin のみ
	api := r.Group("/api/v2")
	authed := api.Group("", auth.RequireAuth(secret))
	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))

	authSvc := auth.NewService(conn, secret)
	auth.RegisterRoutes(api.Group("/auth"), admin.Group("/auth"), authSvc)

	journal := history.NewService(conn, loc)
	inoutSvc := inout.NewService(conn, loc, journal, notifier)

	safety := time.Duration(cfg.Scheduler.SafetyNetSeconds) * time.Second
	sched := inout.NewScheduler(conn, loc, safety, notifier)

	inout.RegisterRoutes(authed, admin, inoutSvc, sched)
	registry.RegisterRoutes(authed, admin, registry.NewService(conn, loc))
	history.RegisterRoutes(authed, journal)
	labels.RegisterRoutes(authed, labels.NewService(conn))

	// 日次リセット：起動時に1回、以後は日付境界ごと（＋安全網ポーリング）
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	go sched.Run(schedCtx)

	sub, err := fs.Sub(embedded, "public")
	if err != nil {
		log.Fatal(err)
	}
	fileFS := http.FS(sub)

	r.NoRoute(func(c *gin.Context) {
		// API は対象外
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Status(http.StatusNotFound)
			return
		}

		reqPath := strings.TrimPrefix(c.Request.URL.Path, "/")
		if reqPath == "" {
			reqPath = "index.html"
		}

		// 実ファイルがあるならそれを返す（Content-Type を推測、キャッシュ付与）
		if f, err := fileFS.Open(reqPath); err == nil {
			defer f.Close()
			if ct := mime.TypeByExtension(path.Ext(reqPath)); ct != "" {
				c.Header("Content-Type", ct)
			}
			// index.html 以外はキャッシュ（SPAの基本運用）
			if !strings.HasSuffix(reqPath, "index.html") {
				c.Header("Cache-Control", "public, max-age=86400, immutable")
			}
			if fileInfo, err := f.Stat(); err == nil {
				http.ServeContent(c.Writer, c.Request, reqPath, fileInfo.ModTime(), f)
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		// なければ index.html にフォールバック
		if idx, err := fileFS.Open("index.html"); err == nil {
			defer idx.Close()
			c.Header("Content-Type", "text/html; charset=utf-8")
			if fileInfo, err := idx.Stat(); err == nil {
				http.ServeContent(c.Writer, c.Request, "index.html", fileInfo.ModTime(), idx)
			} else {
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		c.Status(http.StatusNotFound)
	})

	srv := &http.Server{
		Addr:    ":8443",
		Handler: r,
	}

	var certFile, keyFile string

	// TLS設定
	if mode == "dev" {
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Println("[INFO] listening on https://0.0.0.0:8443")
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	stopSched()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
