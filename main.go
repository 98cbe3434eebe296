package main

import (
	"context"
	"log"

	"optika/internal/auth"
	"optika/internal/cache"
	"optika/internal/config"
	"optika/internal/database"
	"optika/internal/mail"
	"optika/internal/memstore"
	"optika/internal/router"
	"optika/internal/seed"
	"optika/internal/store"
	"optika/internal/upload"
)

func main() {
	config.Load()
	cfg := config.AppEnv
	ctx := context.Background()

	backend, closeBackend := openBackend(ctx, cfg)
	defer closeBackend()

	redisCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisCache.Close()
	if !redisCache.Enabled() {
		log.Println("REDIS_ADDR not set, product options are not cached")
	}

	deps := router.Deps{
		Backend:       backend,
		Tokens:        auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL),
		Cache:         redisCache,
		Notifier:      newNotifier(cfg),
		SecureCookies: cfg.Production(),
	}

	if cfg.UploadDriver == "s3" {
		images, err := upload.NewS3Storage(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Fatal(err)
		}
		deps.Images = images
	} else {
		deps.Images = upload.NewLocalStorage(cfg.UploadDir, cfg.UploadURL)
		deps.UploadDir = cfg.UploadDir
		deps.UploadURL = cfg.UploadURL
	}

	r := router.New(deps)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func openBackend(ctx context.Context, cfg config.Config) (store.Backend, func()) {
	if cfg.StoreDriver == "memory" {
		mem := memstore.New()
		if _, err := seed.Admin(ctx, mem.UserStore(), cfg.AdminPassword); err != nil {
			log.Fatal(err)
		}
		if _, err := seed.Products(ctx, mem.ProductStore()); err != nil {
			log.Fatal(err)
		}
		log.Println("Using the in-memory store with sample data")
		return mem, func() {}
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())
	database.EnsureIndexes(db)

	return database.New(db), func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Println("MongoDB disconnect error:", err)
		}
	}
}

func newNotifier(cfg config.Config) mail.Notifier {
	if !cfg.MailEnabled() {
		log.Println("SMTP not configured, order emails are logged only")
		return mail.Discard{}
	}

	sender, err := mail.NewSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		log.Fatal(err)
	}
	return sender
}
