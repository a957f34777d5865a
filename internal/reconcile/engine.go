// Package reconcile settles pending business transactions against canonical
// provider events. Each event is processed inside one atomic ledger unit of
// work; notifications go out only after it commits.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"kolo/internal/events"
	"kolo/internal/fees"
	"kolo/internal/ledger"
	"kolo/internal/models"
)

// VirtualAccountDirectory resolves a provider bank account to the wallet it
// funds. A nil wallet with nil error means the account is not internally
// held.
type VirtualAccountDirectory interface {
	WalletFor(ctx context.Context, accountNumber, currency string) (*models.Wallet, error)
}

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

// Dispatcher delivers user-facing notifications. Implementations are
// fire-and-forget and at-most-once; failures are logged, never retried.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID uint, title, body string)
}

// Engine is the reconciliation engine. All collaborators are injected.
type Engine struct {
	ledger   ledger.Ledger
	accounts VirtualAccountDirectory
	users    UserDirectory
	notifier Dispatcher
	fees     *fees.Schedule
	logger   *zap.Logger
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(l ledger.Ledger, accounts VirtualAccountDirectory, users UserDirectory, notifier Dispatcher, schedule *fees.Schedule, logger *zap.Logger) *Engine {
	if l == nil {
		panic("ledger is required")
	}
	if accounts == nil {
		panic("virtual account directory is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	if schedule == nil {
		schedule = fees.NewSchedule(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:   l,
		accounts: accounts,
		users:    users,
		notifier: notifier,
		fees:     schedule,
		logger:   logger,
	}
}

type note struct {
	userID uint
	title  string
	body   string
}

// Process applies one canonical event. The whole effect commits or rolls back
// as a single unit; redelivered events hit the status guard and no-op, so
// Process is safe to re-run.
func (e *Engine) Process(ctx context.Context, evt events.CanonicalEvent) error {
	var queued []note

	err := e.ledger.InTransaction(ctx, func(l ledger.Ledger) error {
		var err error
		switch evt.Kind {
		case events.KindOutwardTransferSucceeded, events.KindSubscriptionSucceeded:
			queued, err = e.settleSuccess(ctx, l, evt)
		case events.KindOutwardTransferFailed, events.KindSubscriptionFailed:
			queued, err = e.settleFailure(ctx, l, evt)
		case events.KindInwardFundsReceived:
			queued, err = e.settleInward(ctx, l, evt)
		case events.KindBankAccountLinkUpdated:
			// Link bookkeeping lives outside the ledger; record it for ops.
			e.logger.Info("bank account link updated",
				zap.String("account_number", evt.AccountNumber),
				zap.String("external_ref", evt.ExternalReference))
		default:
			e.logger.Warn("unhandled canonical event kind", zap.String("kind", string(evt.Kind)))
		}
		return err
	})
	if err != nil {
		return err
	}

	for _, n := range queued {
		e.notifier.Dispatch(ctx, n.userID, n.title, n.body)
	}
	return nil
}

func (e *Engine) settleSuccess(ctx context.Context, l ledger.Ledger, evt events.CanonicalEvent) ([]note, error) {
	txn, err := l.FindSettleable(ctx, evt.ExternalReference)
	if errors.Is(err, ledger.ErrTransactionNotFound) {
		// Duplicate after settlement, or a foreign reference. Not an error.
		e.logger.Info("no settleable transaction for event",
			zap.String("kind", string(evt.Kind)),
			zap.String("external_ref", evt.ExternalReference))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := l.Transition(ctx, txn, models.StatusSuccessful); err != nil {
		return nil, err
	}

	notes := []note{{
		userID: txn.UserID,
		title:  "Transaction successful",
		body:   fmt.Sprintf("Your %s of %s is complete.", txn.Type, formatAmount(txn.Amount, txn.Currency)),
	}}

	// A transfer landing on one of our own virtual accounts also notifies the
	// receiving owner.
	if evt.AccountNumber != "" {
		currency := evt.Currency
		if currency == "" {
			currency = txn.Currency
		}
		dest, derr := e.accounts.WalletFor(ctx, evt.AccountNumber, currency)
		if derr != nil {
			return nil, derr
		}
		if dest != nil {
			notes = append(notes, note{
				userID: dest.UserID,
				title:  "Money received",
				body:   fmt.Sprintf("You received %s from %s.", formatAmount(txn.Amount, currency), e.senderName(ctx, txn.UserID)),
			})
		}
	}
	return notes, nil
}

func (e *Engine) settleFailure(ctx context.Context, l ledger.Ledger, evt events.CanonicalEvent) ([]note, error) {
	txn, err := l.FindSettleable(ctx, evt.ExternalReference)
	if errors.Is(err, ledger.ErrTransactionNotFound) {
		e.logger.Info("no settleable transaction for event",
			zap.String("kind", string(evt.Kind)),
			zap.String("external_ref", evt.ExternalReference))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	feeLeg, err := l.FeeFor(ctx, txn)
	if err != nil {
		return nil, err
	}

	// Compensating credit returns the pre-authorized amount and its fee.
	if _, err := l.Credit(ctx, txn.WalletID, txn.Amount+feeLeg.Amount); err != nil {
		return nil, err
	}
	if err := l.Transition(ctx, txn, models.StatusReversed); err != nil {
		return nil, err
	}

	return []note{{
		userID: txn.UserID,
		title:  "Transaction reversed",
		body: fmt.Sprintf("Your %s of %s could not be completed. The funds have been returned to your wallet.",
			txn.Type, formatAmount(txn.Amount, txn.Currency)),
	}}, nil
}

func (e *Engine) settleInward(ctx context.Context, l ledger.Ledger, evt events.CanonicalEvent) ([]note, error) {
	wallet, err := e.accounts.WalletFor(ctx, evt.AccountNumber, evt.Currency)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		// Operational alert, not a retryable code error: the provider paid an
		// account we do not know.
		e.logger.Warn("inward funds for unmapped virtual account",
			zap.String("account_number", evt.AccountNumber),
			zap.String("currency", evt.Currency),
			zap.String("external_ref", evt.ExternalReference),
			zap.Int64("amount", evt.Amount))
		return nil, nil
	}

	seen, err := l.HasTransaction(ctx, evt.ExternalReference)
	if err != nil {
		return nil, err
	}
	if seen {
		e.logger.Info("duplicate inward funding dropped",
			zap.String("external_ref", evt.ExternalReference))
		return nil, nil
	}

	fee := evt.Fee
	if fee == 0 {
		fee = e.fees.For(models.TransactionTypeFundWallet, evt.Amount)
	}

	entry, err := l.Credit(ctx, wallet.ID, evt.Amount-fee)
	if err != nil {
		return nil, err
	}

	var payload models.JSON
	if len(evt.Raw) > 0 {
		// Best effort: the raw payload is already audited by the gateway.
		_ = payload.UnmarshalJSON(evt.Raw)
	}
	txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionParams{
		UserID:            wallet.UserID,
		WalletID:          wallet.ID,
		Type:              models.TransactionTypeFundWallet,
		Amount:            evt.Amount,
		Currency:          wallet.Currency,
		Status:            models.StatusSuccessful,
		ExternalReference: evt.ExternalReference,
		Narration:         fundingNarration(evt.CounterpartyName),
		Payload:           payload,
	})
	if err != nil {
		return nil, err
	}
	if _, err := l.CreateFeeTransaction(ctx, txn, fee); err != nil {
		return nil, err
	}
	if err := l.AttachWalletTransaction(ctx, txn, entry); err != nil {
		return nil, err
	}

	return []note{{
		userID: wallet.UserID,
		title:  "Wallet funded",
		body:   fmt.Sprintf("%s has been added to your wallet.", formatAmount(evt.Amount-fee, wallet.Currency)),
	}}, nil
}

func (e *Engine) senderName(ctx context.Context, userID uint) string {
	if e.users == nil {
		return "a kolo user"
	}
	u, err := e.users.UserByID(ctx, userID)
	if err != nil {
		e.logger.Warn("resolve sender for notification", zap.Uint("user_id", userID), zap.Error(err))
		return "a kolo user"
	}
	return u.FirstName + " " + u.LastName
}

func fundingNarration(counterparty string) string {
	if counterparty == "" {
		return "Wallet funding"
	}
	return "Wallet funding from " + counterparty
}

func formatAmount(minor int64, currency string) string {
	if currency == "" {
		currency = "NGN"
	}
	return fmt.Sprintf("%s %d.%02d", currency, minor/100, minor%100)
}
