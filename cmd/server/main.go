package main

import (
	"context"
	"flag"
	"log"

	"github.com/vnetserg/mafia/internal/locale"
	"github.com/vnetserg/mafia/internal/supervisor"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "TCP address to listen on")
	localeFlag := flag.String("locale", "en", "text locale (only \"en\" is implemented)")
	flag.Parse()

	if *localeFlag != "en" {
		log.Fatalf("unsupported locale %q", *localeFlag)
	}

	cfg := supervisor.Config{
		Addr:   *addr,
		Locale: locale.En,
	}

	if err := supervisor.Run(context.Background(), cfg); err != nil {
		log.Fatalf("[server] stopped: %v", err)
	}
}
