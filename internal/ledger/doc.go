/*
Package ledger owns wallet balances and the append-only entry log behind them.

All money movement in the system funnels through the two primitives Debit and
Credit. Each appends exactly one WalletTransaction and returns an Entry handle
identifying the appended row; callers that need to associate a business
Transaction with the entry that funded it must pass that exact handle to
AttachWalletTransaction. Re-querying "the latest entry for this wallet" is
wrong: two workers crediting the same wallet would associate each other's
entries.

Transaction and FeeTransaction rows are created here on behalf of callers, but
after creation only their status moves, and only along the legal edges:

	PENDING    -> PROCESSING | SUCCESSFUL | REVERSED | FAILED
	PROCESSING -> SUCCESSFUL | REVERSED | FAILED

SUCCESSFUL and REVERSED are terminal. Repeating the current status is a no-op,
which is what makes webhook redelivery safe.

Two implementations ship: the gorm/postgres one used in production, which
locks wallet and transaction rows FOR UPDATE, and an in-memory one for tests.
*/
package ledger
