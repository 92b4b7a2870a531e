package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ThilinaV98/blog-platform/internal/categoryservice"
	"github.com/ThilinaV98/blog-platform/internal/commentservice"
	"github.com/ThilinaV98/blog-platform/internal/common"
	"github.com/ThilinaV98/blog-platform/internal/mailservice"
	"github.com/ThilinaV98/blog-platform/internal/postservice"
	"github.com/ThilinaV98/blog-platform/internal/userservice"
)

type application struct {
	config          *Config
	logger          *slog.Logger
	db              *sql.DB
	cache           *common.Cache
	broker          *common.MessageBroker
	userService     *userservice.UserService
	postService     *postservice.PostService
	commentService  *commentservice.CommentService
	categoryService *categoryservice.CategoryService
	mailService     *mailservice.MailService
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	app := &application{
		config:          cfg,
		logger:          logger,
		db:              db,
		cache:           cache,
		broker:          broker,
		userService:     userservice.NewUserService(db, broker, cache, cfg.AccessTokenSecret, cfg.RefreshTokenSecret),
		postService:     postservice.NewPostService(db, cache),
		commentService:  commentservice.NewCommentService(db, cache),
		categoryService: categoryservice.NewCategoryService(db),
		mailService:     mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
	}

	go app.mailService.SendVerificationEmail()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
