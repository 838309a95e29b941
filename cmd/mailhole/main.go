package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/gologme/log"

	"github.com/mailhole/mailhole/internal/config"
	"github.com/mailhole/mailhole/internal/events"
	"github.com/mailhole/mailhole/internal/httpserver"
	"github.com/mailhole/mailhole/internal/query"
	"github.com/mailhole/mailhole/internal/smtpserver"
	"github.com/mailhole/mailhole/internal/storage/fsstore"
)

var smtpaddr = flag.String("smtp", "", "SMTP listen address (overrides MAILHOLE_SMTP_ADDR)")
var httpaddr = flag.String("http", "", "HTTP listen address (overrides MAILHOLE_HTTP_ADDR)")
var mailboxes = flag.String("mailboxes", "", "mailbox root directory (overrides MAILHOLE_MAILBOXES)")
var domain = flag.String("domain", "", "SMTP greeting domain (overrides MAILHOLE_DOMAIN)")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *smtpaddr != "" {
		cfg.SMTPAddr = *smtpaddr
	}
	if *httpaddr != "" {
		cfg.HTTPAddr = *httpaddr
	}
	if *mailboxes != "" {
		cfg.Mailboxes = *mailboxes
	}
	if *domain != "" {
		cfg.Domain = *domain
	}

	green := color.New(color.FgGreen).SprintFunc()
	logger := log.New(os.Stdout, fmt.Sprintf("[ %s ] ", green("Mailhole")), log.LstdFlags|log.Lmsgprefix)
	logger.EnableLevel("error")
	logger.EnableLevel("warn")
	logger.EnableLevel("info")
	if cfg.LogLevel == "debug" {
		logger.EnableLevel("debug")
	}

	store, err := fsstore.New(cfg.Mailboxes)
	if err != nil {
		logger.Fatalf("Failed to open mailbox root: %v", err)
	}
	logger.Printf("Using mailbox root %q\n", store.Root())

	bus := events.NewBus(cfg.BusBacklog)

	backend := &smtpserver.Backend{
		Log:   logger,
		Store: store,
		Bus:   bus,
	}
	smtpServer := smtpserver.NewSMTPServer(backend, cfg.SMTPAddr, cfg.Domain)

	facade := &query.Facade{
		Store: store,
		Bus:   bus,
	}
	httpServer := httpserver.NewHTTPServer(facade, bus, logger, cfg.HTTPAddr)

	wg := &sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := smtpServer.ListenAndServe(); err != nil {
			logger.Fatalf("SMTP server failed: %v", err)
		}
	}()

	go func() {
		defer wg.Done()
		if err := httpServer.Listen(); err != nil {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	wg.Wait()
}
