package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит настройки приложения
type Config struct {
	HTTPAddr    string        // Адрес HTTP сервера
	DBHost      string        // Хост базы данных
	DBPort      string        // Порт базы данных
	DBUser      string        // Пользователь базы данных
	DBPassword  string        // Пароль базы данных
	DBName      string        // Имя базы данных
	JWTSecret   string        // Секрет для JWT
	TokenExpiry time.Duration // Время жизни токена

	SMTPHost     string // Хост SMTP сервера
	SMTPPort     int    // Порт SMTP сервера
	SMTPUser     string // Пользователь SMTP
	SMTPPassword string // Пароль SMTP
	EmailEnabled bool   // Включена ли отправка уведомлений

	AuditSchedule string // Cron-расписание проверки целостности леджера
	LogLevel      string // Уровень логирования (trace/debug/info/warn/error)
}

// LoadConfig загружает конфигурацию из .env файла и переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем переменные окружения из .env файла
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Файл .env не найден")
	}

	// Парсим время жизни токена
	expiry, err := time.ParseDuration(os.Getenv("TOKEN_EXPIRY"))
	if err != nil {
		expiry = 24 * time.Hour // По умолчанию 24 часа
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	config := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "banking_online"),
		JWTSecret:     getEnv("JWT_SECRET", "default-secret-key"),
		TokenExpiry:   expiry,
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      smtpPort,
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASS"),
		EmailEnabled:  os.Getenv("EMAIL_SENDER_ENABLED") == "true",
		AuditSchedule: getEnv("AUDIT_SCHEDULE", "0 */12 * * *"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	return config, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
