// Command queryapi serves the read/preferences HTTP surface over the
// normalized store.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"

	"github.com/co-za/tenders-ingest/internal/api"
	"github.com/co-za/tenders-ingest/internal/config"
	"github.com/co-za/tenders-ingest/internal/secret"
	"github.com/co-za/tenders-ingest/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sess, err := session.NewSession()
	if err != nil {
		log.Fatal(err)
	}

	secrets := &secret.Store{Client: ssm.New(sess)}
	password, err := secrets.Get(cfg.DB.PasswordParam)
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(dsn(cfg, password))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal(err)
	}

	srv := &api.Server{Store: db}

	addr := ":" + port()
	log.Println("queryapi: listening on", addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatal(err)
	}
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}

func dsn(cfg *config.Config, password string) string {
	port := cfg.DB.Port
	if port == 0 {
		port = 5432
	}
	return "host=" + cfg.DB.Host +
		" port=" + strconv.Itoa(port) +
		" dbname=" + cfg.DB.Name +
		" user=" + cfg.DB.User +
		" password=" + password +
		" sslmode=require"
}
