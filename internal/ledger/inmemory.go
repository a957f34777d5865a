package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kolo/internal/models"
)

// InMemory is a concurrency-safe in-memory ledger useful for unit tests. It
// honors the same invariants as the postgres implementation: balances move
// only through Debit/Credit, entries are append-only, statuses follow the
// state machine and units of work commit or roll back atomically.
type InMemory struct {
	mu sync.Mutex
	st *memState
}

type memState struct {
	wallets map[uint]*models.Wallet
	entries []*models.WalletTransaction
	txns    map[uint]*models.Transaction
	fees    map[uint]*models.FeeTransaction // keyed by parent transaction id

	nextWalletID uint
	nextEntryID  uint
	nextTxnID    uint
	nextFeeID    uint
}

// NewInMemory creates an empty in-memory ledger.
func NewInMemory() *InMemory {
	return &InMemory{st: &memState{
		wallets: make(map[uint]*models.Wallet),
		txns:    make(map[uint]*models.Transaction),
		fees:    make(map[uint]*models.FeeTransaction),
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		wallets:      make(map[uint]*models.Wallet, len(s.wallets)),
		entries:      append([]*models.WalletTransaction(nil), s.entries...),
		txns:         make(map[uint]*models.Transaction, len(s.txns)),
		fees:         make(map[uint]*models.FeeTransaction, len(s.fees)),
		nextWalletID: s.nextWalletID,
		nextEntryID:  s.nextEntryID,
		nextTxnID:    s.nextTxnID,
		nextFeeID:    s.nextFeeID,
	}
	for id, w := range s.wallets {
		cp := *w
		c.wallets[id] = &cp
	}
	for id, t := range s.txns {
		cp := *t
		if t.WalletTransactionID != nil {
			v := *t.WalletTransactionID
			cp.WalletTransactionID = &v
		}
		c.txns[id] = &cp
	}
	for id, f := range s.fees {
		cp := *f
		if f.WalletTransactionID != nil {
			v := *f.WalletTransactionID
			cp.WalletTransactionID = &v
		}
		c.fees[id] = &cp
	}
	return c
}

// CreateWallet registers an active wallet with a zero balance.
func (m *InMemory) CreateWallet(userID uint, currency string) *models.Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.nextWalletID++
	w := &models.Wallet{
		ID:       m.st.nextWalletID,
		UserID:   userID,
		Currency: currency,
		Active:   true,
	}
	m.st.wallets[w.ID] = w
	cp := *w
	return &cp
}

// SetWalletActive flips a wallet's active flag.
func (m *InMemory) SetWalletActive(walletID uint, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.st.wallets[walletID]; ok {
		w.Active = active
	}
}

// Entries returns copies of a wallet's ledger entries in append order.
func (m *InMemory) Entries(walletID uint) []models.WalletTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WalletTransaction
	for _, e := range m.st.entries {
		if e.WalletID == walletID {
			out = append(out, *e)
		}
	}
	return out
}

// Transactions returns copies of every business transaction.
func (m *InMemory) Transactions() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Transaction, 0, len(m.st.txns))
	for _, t := range m.st.txns {
		out = append(out, *t)
	}
	return out
}

// InTransaction snapshots the state, runs fn, and restores the snapshot when
// fn fails, so partial effects never leak out of a failed unit of work.
func (m *InMemory) InTransaction(ctx context.Context, fn func(Ledger) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.st.clone()
	if err := fn(&memView{st: m.st}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (m *InMemory) Debit(ctx context.Context, walletID uint, amount int64) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).Debit(ctx, walletID, amount)
}

func (m *InMemory) Credit(ctx context.Context, walletID uint, amount int64) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).Credit(ctx, walletID, amount)
}

func (m *InMemory) CreateTransaction(ctx context.Context, p CreateTransactionParams) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).CreateTransaction(ctx, p)
}

func (m *InMemory) CreateFeeTransaction(ctx context.Context, parent *models.Transaction, fee int64) (*models.FeeTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).CreateFeeTransaction(ctx, parent, fee)
}

func (m *InMemory) AttachWalletTransaction(ctx context.Context, txn *models.Transaction, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).AttachWalletTransaction(ctx, txn, entry)
}

func (m *InMemory) Transition(ctx context.Context, txn *models.Transaction, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).Transition(ctx, txn, status)
}

func (m *InMemory) FindSettleable(ctx context.Context, externalRef string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).FindSettleable(ctx, externalRef)
}

func (m *InMemory) HasTransaction(ctx context.Context, externalRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).HasTransaction(ctx, externalRef)
}

func (m *InMemory) FeeFor(ctx context.Context, txn *models.Transaction) (*models.FeeTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).FeeFor(ctx, txn)
}

func (m *InMemory) WalletByID(ctx context.Context, walletID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).WalletByID(ctx, walletID)
}

func (m *InMemory) Balance(ctx context.Context, walletID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memView{st: m.st}).Balance(ctx, walletID)
}

// memView operates on state the caller has already locked. InTransaction
// hands one to its callback so nested operations join the same unit of work.
type memView struct {
	st *memState
}

func (v *memView) InTransaction(ctx context.Context, fn func(Ledger) error) error {
	return fn(v)
}

func (v *memView) Debit(ctx context.Context, walletID uint, amount int64) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return v.apply(walletID, -amount)
}

func (v *memView) Credit(ctx context.Context, walletID uint, amount int64) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return v.apply(walletID, amount)
}

func (v *memView) apply(walletID uint, delta int64) (*Entry, error) {
	wallet, ok := v.st.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	if delta < 0 {
		if !wallet.Active {
			return nil, ErrInactiveWallet
		}
		if wallet.Balance+delta < 0 {
			return nil, ErrInsufficientFunds
		}
	}
	wallet.Balance += delta

	v.st.nextEntryID++
	wt := &models.WalletTransaction{
		ID:               v.st.nextEntryID,
		WalletID:         wallet.ID,
		AmountChange:     delta,
		ResultingBalance: wallet.Balance,
	}
	v.st.entries = append(v.st.entries, wt)

	return &Entry{
		ID:               wt.ID,
		WalletID:         wallet.ID,
		AmountChange:     delta,
		ResultingBalance: wallet.Balance,
	}, nil
}

func (v *memView) CreateTransaction(ctx context.Context, p CreateTransactionParams) (*models.Transaction, error) {
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.Reference == "" {
		p.Reference = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	if p.Currency == "" {
		p.Currency = "NGN"
	}

	v.st.nextTxnID++
	txn := &models.Transaction{
		ID:                v.st.nextTxnID,
		UserID:            p.UserID,
		WalletID:          p.WalletID,
		Type:              p.Type,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            p.Status,
		Reference:         p.Reference,
		ExternalReference: p.ExternalReference,
		Narration:         p.Narration,
		Payload:           p.Payload,
	}
	v.st.txns[txn.ID] = txn
	cp := *txn
	return &cp, nil
}

func (v *memView) CreateFeeTransaction(ctx context.Context, parent *models.Transaction, fee int64) (*models.FeeTransaction, error) {
	if fee < 0 {
		return nil, ErrInvalidAmount
	}
	v.st.nextFeeID++
	ft := &models.FeeTransaction{
		ID:            v.st.nextFeeID,
		TransactionID: parent.ID,
		UserID:        parent.UserID,
		WalletID:      parent.WalletID,
		Amount:        fee,
		Currency:      parent.Currency,
		Status:        parent.Status,
		Reference:     parent.Reference + "-fee",
	}
	v.st.fees[parent.ID] = ft
	cp := *ft
	return &cp, nil
}

func (v *memView) AttachWalletTransaction(ctx context.Context, txn *models.Transaction, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("nil ledger entry")
	}
	stored, ok := v.st.txns[txn.ID]
	if !ok {
		return ErrTransactionNotFound
	}
	if stored.WalletTransactionID != nil {
		if *stored.WalletTransactionID == entry.ID {
			txn.WalletTransactionID = stored.WalletTransactionID
			return nil
		}
		return ErrImmutableField
	}
	id := entry.ID
	stored.WalletTransactionID = &id
	txn.WalletTransactionID = &id
	return nil
}

func (v *memView) Transition(ctx context.Context, txn *models.Transaction, status string) error {
	stored, ok := v.st.txns[txn.ID]
	if !ok {
		return ErrTransactionNotFound
	}
	if stored.Status != txn.Status {
		return fmt.Errorf("%w: transaction %d moved concurrently", ErrInvalidTransition, txn.ID)
	}
	if stored.Status == status {
		return nil
	}
	if !CanTransition(stored.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, stored.Status, status)
	}
	stored.Status = status
	if ft, ok := v.st.fees[txn.ID]; ok {
		ft.Status = status
	}
	txn.Status = status
	return nil
}

func (v *memView) FindSettleable(ctx context.Context, externalRef string) (*models.Transaction, error) {
	for _, t := range v.st.txns {
		if t.ExternalReference == externalRef &&
			(t.Status == models.StatusPending || t.Status == models.StatusProcessing) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTransactionNotFound
}

func (v *memView) HasTransaction(ctx context.Context, externalRef string) (bool, error) {
	for _, t := range v.st.txns {
		if t.ExternalReference == externalRef {
			return true, nil
		}
	}
	return false, nil
}

func (v *memView) FeeFor(ctx context.Context, txn *models.Transaction) (*models.FeeTransaction, error) {
	ft, ok := v.st.fees[txn.ID]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	cp := *ft
	return &cp, nil
}

func (v *memView) WalletByID(ctx context.Context, walletID uint) (*models.Wallet, error) {
	w, ok := v.st.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (v *memView) Balance(ctx context.Context, walletID uint) (int64, error) {
	w, ok := v.st.wallets[walletID]
	if !ok {
		return 0, ErrWalletNotFound
	}
	return w.Balance, nil
}
