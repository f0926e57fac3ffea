package service_test

import (
	"bytes"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accounts-replay-ledger/internal/domain/account"
	"github.com/accounts-replay-ledger/internal/domain/shared"
	"github.com/accounts-replay-ledger/internal/platform/codec"
	"github.com/accounts-replay-ledger/internal/report"
	"github.com/accounts-replay-ledger/internal/transaction_processor/components"
	"github.com/accounts-replay-ledger/internal/transaction_processor/service"
)

func newReplayService() service.ReplayService {
	return components.CreateReplayService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func replayCSV(t *testing.T, rows ...string) *service.Result {
	t.Helper()

	input := "type,client,tx,amount\n" + strings.Join(rows, "\n") + "\n"
	records, err := codec.ParseTransactions(strings.NewReader(input))
	require.NoError(t, err)

	return newReplayService().Replay(records)
}

func renderCSV(t *testing.T, accounts []account.Account) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, accounts))
	return buf.String()
}

func TestReplay_DepositsThenWithdrawal(t *testing.T) {
	result := replayCSV(t,
		"deposit,1,1,1.0",
		"deposit,1,2,2.0",
		"withdrawal,1,3,1.5",
	)

	assert.Equal(t,
		"client,available,held,total,locked\n1,1.5,0.0,1.5,false\n",
		renderCSV(t, result.Accounts))
	assert.Equal(t, 3, result.Applied)
}

func TestReplay_DisputeHoldsDeposit(t *testing.T) {
	result := replayCSV(t,
		"deposit,1,1,5.0",
		"dispute,1,1,",
	)

	assert.Equal(t,
		"client,available,held,total,locked\n1,0.0,5.0,5.0,false\n",
		renderCSV(t, result.Accounts))
}

func TestReplay_DisputeOnMissingTxIsNoOp(t *testing.T) {
	withDispute := replayCSV(t,
		"deposit,1,1,5.0",
		"dispute,1,9,",
	)
	withoutDispute := replayCSV(t,
		"deposit,1,1,5.0",
	)

	assert.Equal(t, renderCSV(t, withoutDispute.Accounts), renderCSV(t, withDispute.Accounts))
	assert.Equal(t, 1, withDispute.Skipped[shared.FailureReasonReferenceNotFound])
}

func TestReplay_DepositsSumForSingleClient(t *testing.T) {
	amounts := []string{"0.1", "2.25", "3", "0.0001", "10"}
	rows := make([]string, 0, len(amounts))
	sum := decimal.Zero
	for i, amount := range amounts {
		rows = append(rows, "deposit,4,"+strconv.Itoa(i+1)+","+amount)
		sum = sum.Add(decimal.RequireFromString(amount))
	}

	result := replayCSV(t, rows...)

	require.Len(t, result.Accounts, 1)
	acc := result.Accounts[0]
	assert.True(t, acc.Available.Equal(sum))
	assert.True(t, acc.Total.Equal(sum))
	assert.True(t, acc.Held.IsZero())
}

func TestReplay_WithdrawalToZeroIsRejected(t *testing.T) {
	result := replayCSV(t,
		"deposit,1,1,2.0",
		"withdrawal,1,2,2.0",
	)

	assert.Equal(t,
		"client,available,held,total,locked\n1,2.0,0.0,2.0,false\n",
		renderCSV(t, result.Accounts))
	assert.Equal(t, 1, result.Skipped[shared.FailureReasonInsufficientFunds])
}

func TestReplay_ChargebackLocksAccount(t *testing.T) {
	result := replayCSV(t,
		"deposit,1,1,5.0",
		"deposit,1,2,1.0",
		"dispute,1,2,",
		"chargeback,1,2,",
		"deposit,1,3,100.0",
		"withdrawal,1,4,1.0",
	)

	assert.Equal(t,
		"client,available,held,total,locked\n1,5.0,0.0,5.0,true\n",
		renderCSV(t, result.Accounts))
	assert.Equal(t, 2, result.Skipped[shared.FailureReasonAccountLocked])
}

func TestReplay_ResolveKeepsTotal(t *testing.T) {
	disputed := replayCSV(t,
		"deposit,1,1,5.0",
		"dispute,1,1,",
	)
	resolved := replayCSV(t,
		"deposit,1,1,5.0",
		"dispute,1,1,",
		"resolve,1,1,",
	)

	require.Len(t, resolved.Accounts, 1)
	assert.True(t, disputed.Accounts[0].Total.Equal(resolved.Accounts[0].Total))
	assert.Equal(t,
		"client,available,held,total,locked\n1,5.0,0.0,5.0,false\n",
		renderCSV(t, resolved.Accounts))
}

func TestReplay_SharedTxIDAppliesEveryMatchingRecord(t *testing.T) {
	// Dispute-family rows reuse the deposit's tx id, so the stable sort keeps them after it
	result := replayCSV(t,
		"deposit,2,1,3.0",
		"dispute,2,1,",
		"deposit,2,2,1.0",
	)

	assert.Equal(t,
		"client,available,held,total,locked\n2,1.0,3.0,4.0,false\n",
		renderCSV(t, result.Accounts))
}

func TestReplay_ReportFollowsFirstAppearanceAfterSort(t *testing.T) {
	result := replayCSV(t,
		"deposit,3,30,1.0",
		"deposit,1,20,1.0",
		"deposit,2,10,1.0",
	)

	require.Len(t, result.Accounts, 3)
	assert.Equal(t, uint32(2), result.Accounts[0].ClientID)
	assert.Equal(t, uint32(1), result.Accounts[1].ClientID)
	assert.Equal(t, uint32(3), result.Accounts[2].ClientID)
}

func TestReplay_InsensitiveToInputOrder(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,10.0\n" +
		"deposit,2,2,4.0\n" +
		"withdrawal,1,3,2.5\n" +
		"dispute,2,2,\n" +
		"deposit,3,4,1.0\n" +
		"withdrawal,3,5,1.0\n" +
		"deposit,1,6,0.25\n"
	records, err := codec.ParseTransactions(strings.NewReader(input))
	require.NoError(t, err)

	svc := newReplayService()
	expected := renderCSV(t, svc.Replay(records).Accounts)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := slices.Clone(records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		assert.Equal(t, expected, renderCSV(t, svc.Replay(shuffled).Accounts))
	}
}

func TestReplay_EmptyInput(t *testing.T) {
	records, err := codec.ParseTransactions(strings.NewReader(""))
	require.NoError(t, err)

	result := newReplayService().Replay(records)

	assert.Empty(t, result.Accounts)
	assert.Equal(t, "client,available,held,total,locked\n", renderCSV(t, result.Accounts))
}

func TestReplay_ReportRoundTrip(t *testing.T) {
	result := replayCSV(t,
		"deposit,1,1,1.5",
		"deposit,2,2,2.0",
		"dispute,2,2,",
		"chargeback,2,2,",
	)

	decoded, err := report.ReadCSV(strings.NewReader(renderCSV(t, result.Accounts)))
	require.NoError(t, err)
	require.Len(t, decoded, len(result.Accounts))

	for i, acc := range result.Accounts {
		assert.Equal(t, acc.ClientID, decoded[i].ClientID)
		assert.True(t, acc.Available.Equal(decoded[i].Available))
		assert.True(t, acc.Held.Equal(decoded[i].Held))
		assert.True(t, acc.Total.Equal(decoded[i].Total))
		assert.Equal(t, acc.Locked, decoded[i].Locked)
	}
}
