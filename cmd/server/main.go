package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/sairajesh711/mafia-lite/internal/config"
	"github.com/sairajesh711/mafia-lite/internal/dedup"
	"github.com/sairajesh711/mafia-lite/internal/dispatch"
	"github.com/sairajesh711/mafia-lite/internal/leader"
	"github.com/sairajesh711/mafia-lite/internal/logging"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
	"github.com/sairajesh711/mafia-lite/internal/roomstore"
	"github.com/sairajesh711/mafia-lite/internal/scheduler"
	"github.com/sairajesh711/mafia-lite/internal/session"
	"github.com/sairajesh711/mafia-lite/internal/token"
	"github.com/sairajesh711/mafia-lite/internal/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	envs := config.Load()
	log := logging.New(false)

	var rooms roomstore.Store
	var sessions session.Store
	var leaderStore leader.Store
	var dedupStore dedup.Store

	if envs.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: envs.RedisAddr, Password: envs.RedisPassword})
		rooms = roomstore.NewRedisStore(rdb)
		sessions = session.NewRedisStore(rdb, envs.SessionTTL)
		leaderStore = leader.NewRedisStore(rdb)
		dedupStore = dedup.NewRedisStore(rdb)
		log.Info().Str("redis_addr", envs.RedisAddr).Msg("cmd/server: backed by redis")
	} else {
		rooms = roomstore.NewMemStore()
		sessions = session.NewMemStore()
		leaderStore = leader.NewMemStore()
		dedupStore = dedup.NewMemStore()
		log.Warn().Msg("cmd/server: no REDIS_ADDR set, running single-instance in-process stores")
	}

	toks := token.NewService(envs.JWTSigningKey, envs.TokenTTL)
	affinity := leader.NewAffinity([]string{envs.InstanceID})
	elector := leader.NewElector(leaderStore, envs.InstanceID, affinity, log)
	hub := transport.NewHub(log)

	d := dispatch.New(rooms, sessions, toks, dedupStore, nil, hub, log)
	resolver := dispatch.NewRoomResolver(d)
	mgr := scheduler.NewManager(resolver, resolver, log)
	sched := newLeaderGatedScheduler(mgr, elector, log)
	d.SetScheduler(sched)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     envs.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "Origin"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"protocolVersion": roomstate.CurrentProtocolVersion,
		})
	})

	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("cmd/server: websocket upgrade failed")
			return
		}
		wsconn := transport.NewWSConn(conn)
		go serveConnection(wsconn, d, hub, toks, log)
	})

	srv := &http.Server{Addr: ":" + envs.Port, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", envs.Port).Msg("cmd/server: listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("cmd/server: listener failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("cmd/server: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mgr.StopAll()
	elector.ResignAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cmd/server: graceful shutdown failed")
	}
}
