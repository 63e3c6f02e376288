package server

import (
	"strings"
	"time"

	"github.com/bookcircle-app/backend/internal/config"
	"github.com/bookcircle-app/backend/internal/middleware"
	"github.com/bookcircle-app/backend/internal/publisher"

	clubbookHttp "github.com/bookcircle-app/backend/internal/modules/clubbook/delivery/http"
	clubbookRepo "github.com/bookcircle-app/backend/internal/modules/clubbook/repository"

	commentHttp "github.com/bookcircle-app/backend/internal/modules/comment/delivery/http"
	commentRepo "github.com/bookcircle-app/backend/internal/modules/comment/repository"
	commentService "github.com/bookcircle-app/backend/internal/modules/comment/service"

	postHttp "github.com/bookcircle-app/backend/internal/modules/post/delivery/http"
	postRepo "github.com/bookcircle-app/backend/internal/modules/post/repository"
	postService "github.com/bookcircle-app/backend/internal/modules/post/service"

	reactionHttp "github.com/bookcircle-app/backend/internal/modules/reaction/delivery/http"
	reactionRepo "github.com/bookcircle-app/backend/internal/modules/reaction/repository"
	reactionService "github.com/bookcircle-app/backend/internal/modules/reaction/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	// One publisher instance shared by every write path; targets are fixed
	// for the life of the process.
	eventPublisher := publisher.NewHTTPPublisher(cfg.EventTargets, cfg.EventTimeout)

	clubBookRepository := clubbookRepo.NewClubBookRepository(db)
	clubBookHandler := clubbookHttp.NewClubBookHandler(clubBookRepository)

	reactionRepository := reactionRepo.NewReactionRepository(db)
	reactionSvc := reactionService.NewReactionService(reactionRepository, eventPublisher, cfg.EventSource)
	reactionHandler := reactionHttp.NewReactionHandler(reactionSvc)

	postRepository := postRepo.NewPostRepository(db)
	postSvc := postService.NewPostService(postRepository, clubBookRepository, reactionSvc, eventPublisher, redisClient, cfg.EventSource, cfg.RateLimitGlobal, cfg.RateLimitPost)
	postHandler := postHttp.NewPostHandler(postSvc)

	commentRepository := commentRepo.NewCommentRepository(db)
	commentSvc := commentService.NewCommentService(commentRepository, postRepository, eventPublisher, redisClient, cfg.EventSource, cfg.RateLimitComment)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	api := router.Group("/api")

	// Read routes: identity optional, used only to resolve the viewer's
	// own reaction.
	reads := api.Group("")
	reads.Use(middleware.OptionalIdentity())
	{
		reads.GET("/feed", postHandler.GetFeed)
		reads.GET("/posts/:id", postHandler.GetPost)
		reads.GET("/posts/:id/reactions", reactionHandler.GetReactions)
		reads.GET("/posts/:id/comments", commentHandler.GetComments)
		reads.GET("/club-books", clubBookHandler.GetClubBooks)
		reads.GET("/club-books/:id", clubBookHandler.GetClubBook)
	}

	// Write routes: the gateway must have resolved a caller identity.
	writes := api.Group("")
	writes.Use(middleware.RequireIdentity())
	{
		writes.POST("/posts", postHandler.CreatePost)
		writes.POST("/posts/:id/comments", commentHandler.CreateComment)
		writes.POST("/posts/:id/reactions", reactionHandler.ToggleReaction)
		writes.POST("/posts/:id/like", reactionHandler.ToggleLike)
		writes.POST("/club-books", clubBookHandler.CreateClubBook)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-Id"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
