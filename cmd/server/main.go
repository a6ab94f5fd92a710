package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"banking-online/internal/config"
	"banking-online/internal/handler"
	"banking-online/internal/repository"
	"banking-online/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Загрузка конфигурации приложения
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Уровень логирования задается переменной окружения LOG_LEVEL
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Неизвестный уровень логирования %q, используется info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Подключение к PostgreSQL
	db, err := sql.Open("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	))
	if err != nil {
		logger.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Проверка соединения с БД
	if err := db.Ping(); err != nil {
		logger.Fatalf("Ошибка проверки соединения с БД: %v", err)
	}

	// Инициализация хранилищ
	logger.Info("Инициализация хранилищ...")
	userRepo := repository.NewUserRepository(db, logger)
	accountRepo := repository.NewAccountRepository(db, logger)
	transferRepo := repository.NewTransferRepository(db, logger)
	txManager := repository.NewTxManager(db, logger)
	emailSender := service.NewEmailSender(cfg, logger)

	// Инициализация сервисов
	logger.Info("Инициализация сервисов...")
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpiry, logger)
	userService := service.NewUserService(userRepo, accountRepo, logger)
	accountService := service.NewAccountService(userRepo, accountRepo, logger)
	ledgerService := service.NewLedgerService(txManager, logger)
	transferService := service.NewTransferService(transferRepo, userRepo, txManager, emailSender, logger)
	auditService := service.NewAuditService(accountRepo, transferRepo, logger)

	// Инициализация HTTP обработчиков
	logger.Info("Инициализация обработчиков API...")
	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	accountHandler := handler.NewAccountHandler(accountService, ledgerService, logger)
	transferHandler := handler.NewTransferHandler(transferService, logger)

	// Настройка маршрутизатора
	router := mux.NewRouter()

	// 1. Публичные маршруты для аутентификации
	publicRouter := router.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(publicRouter) // Регистрация /signup и /signin

	// 2. Защищенные API маршруты (требуется JWT токен)
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(authService, logger))

	// Маршруты для работы с пользователями
	userRouter := apiRouter.PathPrefix("/users").Subrouter()
	userHandler.RegisterRoutes(userRouter)

	// Маршруты для работы со счетами
	accountRouter := apiRouter.PathPrefix("/accounts").Subrouter()
	accountHandler.RegisterRoutes(accountRouter)

	// Маршруты для работы с переводами
	transferRouter := apiRouter.PathPrefix("/transfers").Subrouter()
	transferHandler.RegisterRoutes(transferRouter)

	// Настройка планировщика для периодической проверки целостности леджера
	logger.Info("Настройка планировщика проверки леджера...")
	c := cron.New()
	_, err = c.AddFunc(cfg.AuditSchedule, func() {
		logger.Info("Запуск проверки целостности леджера")
		if _, err := auditService.Run(context.Background()); err != nil {
			logger.WithError(err).Error("Ошибка проверки целостности леджера")
		}
	})
	if err != nil {
		logger.Fatalf("Ошибка настройки планировщика: %v", err)
	}
	c.Start()

	// Настройка и запуск HTTP сервера
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("Запуск сервера на %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание сигналов для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Завершение работы сервера...")
	c.Stop()
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Errorf("Ошибка при завершении работы сервера: %v", err)
	}
	logger.Info("Сервер успешно остановлен")
}
