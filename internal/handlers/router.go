package handlers

import (
	"net/http"

	"taskrewards/internal/config"
	"taskrewards/internal/db"
	"taskrewards/internal/middleware"
	"taskrewards/internal/services"
	"taskrewards/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg          config.Config
	txRunner     db.TxRunner
	users        UserStore
	wallets      WalletStore
	transactions TransactionStore
	offers       OfferStore
	submissions  SubmissionStore
	upgrades     UpgradeStore
	plans        PlanStore
	admin        AdminStore
	auditLog     AuditStore
	audit        services.AuditLogger
	referrals    ReferralLinker

	walletSvc     WalletService
	submissionSvc SubmissionService
	withdrawalSvc WithdrawalService
	depositSvc    DepositService
	upgradeSvc    UpgradeService
	postbackSvc   PostbackService
	hub           *websocket.Hub
}

type Deps struct {
	Cfg          config.Config
	TxRunner     db.TxRunner
	Users        UserStore
	Wallets      WalletStore
	Transactions TransactionStore
	Offers       OfferStore
	Submissions  SubmissionStore
	Upgrades     UpgradeStore
	Plans        PlanStore
	Admin        AdminStore
	AuditLog     AuditStore
	Audit        services.AuditLogger
	Referrals    ReferralLinker

	WalletSvc     WalletService
	SubmissionSvc SubmissionService
	WithdrawalSvc WithdrawalService
	DepositSvc    DepositService
	UpgradeSvc    UpgradeService
	PostbackSvc   PostbackService
	Hub           *websocket.Hub
}

func New(deps Deps) *Handler {
	return &Handler{
		cfg:           deps.Cfg,
		txRunner:      deps.TxRunner,
		users:         deps.Users,
		wallets:       deps.Wallets,
		transactions:  deps.Transactions,
		offers:        deps.Offers,
		submissions:   deps.Submissions,
		upgrades:      deps.Upgrades,
		plans:         deps.Plans,
		admin:         deps.Admin,
		auditLog:      deps.AuditLog,
		audit:         deps.Audit,
		referrals:     deps.Referrals,
		walletSvc:     deps.WalletSvc,
		submissionSvc: deps.SubmissionSvc,
		withdrawalSvc: deps.WithdrawalSvc,
		depositSvc:    deps.DepositSvc,
		upgradeSvc:    deps.UpgradeSvc,
		postbackSvc:   deps.PostbackSvc,
		hub:           deps.Hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	authed := router.With(middleware.Auth(h.cfg.JWTSecret))
	authed.Get("/wallet", h.GetWallet)
	authed.Get("/transactions", h.ListTransactions)
	authed.Get("/offers", h.ListOffers)
	authed.Get("/plans", h.ListPlans)
	authed.Post("/submissions", h.CreateSubmission)
	authed.Get("/submissions", h.ListOwnSubmissions)
	authed.Post("/withdrawals", h.RequestWithdrawal)
	authed.Post("/deposits", h.RequestDeposit)
	authed.Post("/upgrades", h.RequestUpgrade)

	// partner callbacks authenticate with an HMAC, not a bearer token
	router.Post("/postbacks/{partner}", h.HandlePostback)
	router.Get("/ws/balances", h.WSBalances)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Use(middleware.RequireAdmin(h.admin))
		r.Get("/users", h.AdminListUsers)
		r.Get("/submissions", h.AdminListSubmissions)
		r.Post("/submissions/{id}/review", h.ReviewSubmission)
		r.Post("/submissions/bulk-review", h.BulkReviewSubmissions)
		r.Get("/withdrawals", h.AdminListWithdrawals)
		r.Post("/withdrawals/{id}/process", h.ProcessWithdrawal)
		r.Post("/withdrawals/bulk-process", h.BulkProcessWithdrawals)
		r.Get("/deposits", h.AdminListDeposits)
		r.Post("/deposits/{id}/process", h.ProcessDeposit)
		r.Get("/upgrades", h.AdminListUpgrades)
		r.Post("/upgrades/{id}/approve", h.ApproveUpgrade)
		r.Post("/upgrades/{id}/reject", h.RejectUpgrade)
		r.Post("/offers", h.CreateOffer)
		r.Delete("/offers/{id}", h.DeactivateOffer)
		r.Post("/balance/adjust", h.AdjustBalance)
		r.Get("/audit", h.ListAuditLogs)
		r.Post("/promote", h.PromoteAdmin)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
