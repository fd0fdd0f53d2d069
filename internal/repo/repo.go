package repo

import (
	"github.com/GlebRadaev/stackmeter/internal/pg"
	eventrepo "github.com/GlebRadaev/stackmeter/internal/repo/event-repo"
	ledgerrepo "github.com/GlebRadaev/stackmeter/internal/repo/ledger-repo"
	memoryrepo "github.com/GlebRadaev/stackmeter/internal/repo/memory-repo"
	subscriptionrepo "github.com/GlebRadaev/stackmeter/internal/repo/subscription-repo"
	"github.com/GlebRadaev/stackmeter/internal/reconcile"
	"github.com/GlebRadaev/stackmeter/internal/service/entitlementservice"
	"github.com/GlebRadaev/stackmeter/internal/service/ledgerservice"
	"github.com/GlebRadaev/stackmeter/internal/service/webhookservice"
)

type SubscriptionRepo interface {
	entitlementservice.Repo
	webhookservice.SubscriptionRepo
}

type EventRepo interface {
	webhookservice.EventRepo
	reconcile.EventRepo
}

type Repositories struct {
	LedgerRepo       ledgerservice.Repo
	SubscriptionRepo SubscriptionRepo
	EventRepo        EventRepo
	TxManager        pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		LedgerRepo:       ledgerrepo.New(conn, txManager),
		SubscriptionRepo: subscriptionrepo.New(conn),
		EventRepo:        eventrepo.New(conn),
		TxManager:        txManager,
	}
}

func NewMemory(store *memoryrepo.Store) *Repositories {
	return &Repositories{
		LedgerRepo:       store.Ledger(),
		SubscriptionRepo: store.Subscriptions(),
		EventRepo:        store.Events(),
		TxManager:        store.TxManager(),
	}
}
