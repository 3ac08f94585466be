package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"blognest/cache"
	"blognest/database"
	"blognest/domain"
	"blognest/http"
	"blognest/storage"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're
	// running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	config := LoadConfig(*productionBool)

	// Open a database connection and execute migrations.
	db := database.NewDB(config.Database.ConnectionInfo())
	err := database.Open(db, config.IsProd())
	must(err)
	defer database.Close(db)
	err = database.AutoMigrate(db)
	must(err)

	// Start the database services.
	services, err := database.NewServices(
		db.Gorm,
		database.WithUser(config.Pepper, config.HMACKey),
		database.WithGroup(),
		database.WithPost(),
		database.WithComment(),
		database.WithFollow(),
		database.WithFeed(),
	)
	must(err)

	// The page cache runs on Redis when an address is configured, and falls
	// back to an in-process cache for local development.
	ttl := time.Duration(config.CacheTTLSeconds) * time.Second
	var pageCache domain.PageCache
	if config.RedisAddr != "" {
		pageCache = cache.NewRedis(config.RedisAddr, ttl)
	} else {
		pageCache = cache.NewMemory(ttl)
	}

	images := storage.NewImageService(config.ImagesDir)

	// Set up a webserver and serve the app.
	server := http.NewServer(config.IsProd(), config.CSRFKey, log, services, images, pageCache)
	must(server.Run(config.Port))
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
