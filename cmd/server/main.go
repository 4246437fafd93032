package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskrewards/internal/config"
	"taskrewards/internal/db"
	"taskrewards/internal/handlers"
	"taskrewards/internal/services"
	"taskrewards/internal/store"
	"taskrewards/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	transactions := store.NewTransactionStore(database)
	offers := store.NewOfferStore(database)
	submissions := store.NewSubmissionStore(database)
	upgrades := store.NewUpgradeStore(database)
	plans := store.NewPlanStore(database)
	referrals := store.NewReferralStore(database)
	admin := store.NewAdminStore(database)
	auditLog := store.NewAuditStore(database)

	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	recorder := services.NewAuditRecorder(auditLog, 256)
	defer recorder.Close()
	notifier := services.LogNotifier{}

	walletSvc := services.NewWalletService(txRunner, wallets, transactions, recorder, hub)
	referralSvc := services.NewReferralService(referrals, transactions, walletSvc, cfg.ReferralDepth, cfg.ReferralPercents)
	submissionSvc := services.NewSubmissionService(txRunner, submissions, offers, walletSvc, referralSvc, recorder, notifier)
	withdrawalSvc := services.NewWithdrawalService(txRunner, cfg, users, walletSvc, transactions, recorder, notifier)
	depositSvc := services.NewDepositService(txRunner, walletSvc, transactions, recorder, notifier)
	upgradeSvc := services.NewUpgradeService(txRunner, upgrades, plans, users, transactions, recorder, notifier)
	postbackSvc := services.NewPostbackService(txRunner, cfg.PostbackSecret, offers, users, walletSvc, transactions, referralSvc, recorder)

	handler := handlers.New(handlers.Deps{
		Cfg:          cfg,
		TxRunner:     txRunner,
		Users:        users,
		Wallets:      wallets,
		Transactions: transactions,
		Offers:       offers,
		Submissions:  submissions,
		Upgrades:     upgrades,
		Plans:        plans,
		Admin:        admin,
		AuditLog:     auditLog,
		Audit:        recorder,
		Referrals:    referralSvc,

		WalletSvc:     walletSvc,
		SubmissionSvc: submissionSvc,
		WithdrawalSvc: withdrawalSvc,
		DepositSvc:    depositSvc,
		UpgradeSvc:    upgradeSvc,
		PostbackSvc:   postbackSvc,
		Hub:           hub,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("task rewards API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
