package reconcile_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/futapay/relay/internal/correlation"
	corrMemory "github.com/futapay/relay/internal/correlation/memory"
	"github.com/futapay/relay/internal/gateway"
	"github.com/futapay/relay/internal/ledger"
	ledgerMemory "github.com/futapay/relay/internal/ledger/memory"
	"github.com/futapay/relay/internal/reconcile"
)

var ref = ledger.Ref{OwnerID: "user-1", TransactionID: "tx-1"}

type fixture struct {
	ledger       *ledger.Service
	ledgerStore  *ledgerMemory.Store
	correlations *correlation.Service
	reconciler   *reconcile.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := ledgerMemory.New()
	f := &fixture{
		ledger:       ledger.NewService(store),
		ledgerStore:  store,
		correlations: correlation.NewService(corrMemory.New()),
	}
	f.reconciler = reconcile.New(f.correlations, f.ledger, reconcile.WithResolveGrace(0, time.Millisecond))

	_, err := f.ledger.Open(context.Background(), ledger.OpenParams{
		Ref:      ref,
		Kind:     ledger.KindSend,
		Amount:   decimal.RequireFromString("100.00"),
		Currency: "EUR",
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) get(t *testing.T) *ledger.Transaction {
	t.Helper()

	tx, err := f.ledgerStore.Get(context.Background(), ref)
	require.NoError(t, err)

	return tx
}

type paymentStub map[string]string

func (p paymentStub) GetPayment(_ context.Context, id string) (gateway.Payment, error) {
	status, ok := p[id]
	if !ok {
		return gateway.Payment{}, errors.New("unknown payment")
	}

	return gateway.Payment{ID: id, Status: status, RawBody: []byte(`{"id":"` + id + `","status":"` + status + `"}`)}, nil
}

func TestHandle_UnresolvedCallbackChangesNothing(t *testing.T) {
	f := newFixture(t)
	before := f.get(t)

	outcome := f.reconciler.Handle(context.Background(), reconcile.NewPawaPayAdapter(), reconcile.Callback{
		Body:        []byte(`{"payoutId":"never-recorded","status":"COMPLETED"}`),
		ContentType: "application/json",
	})

	assert.Equal(t, reconcile.OutcomeUnresolved, outcome)
	assert.Equal(t, before, f.get(t))
}

func TestHandle_UnparseableCallback(t *testing.T) {
	f := newFixture(t)

	outcome := f.reconciler.Handle(context.Background(), reconcile.NewPawaPayAdapter(), reconcile.Callback{
		Body: []byte(`not json at all`),
	})

	assert.Equal(t, reconcile.OutcomeUnparseable, outcome)
}

func TestHandle_DuplicatePaidCallbacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AttachPayment(ctx, ref, ledger.Exchange{
		Processor:  ledger.ProcessorMollie,
		ExternalID: "tr_1",
		HTTPStatus: 201,
		Response:   []byte(`{"id":"tr_1","status":"open"}`),
	})
	require.NoError(t, err)
	require.NoError(t, f.correlations.Record(ctx, correlation.Entry{Processor: ledger.ProcessorMollie, ExternalID: "tr_1", Ref: ref}))

	adapter := reconcile.NewMollieAdapter(paymentStub{"tr_1": "paid"})
	cb := reconcile.Callback{Body: []byte("id=tr_1"), ContentType: "application/x-www-form-urlencoded"}

	assert.Equal(t, reconcile.OutcomeApplied, f.reconciler.Handle(ctx, adapter, cb))
	first := f.get(t)

	assert.Equal(t, reconcile.OutcomeDuplicate, f.reconciler.Handle(ctx, adapter, cb))
	second := f.get(t)

	assert.Equal(t, ledger.PaymentPaid, second.PaymentStatus)
	assert.Equal(t, first.Refs, second.Refs)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	st := second.RawState[ledger.ProcessorMollie]
	require.NotNil(t, st)
	assert.JSONEq(t, `{"id":"tr_1","status":"open"}`, string(st.LastResponse))
	assert.JSONEq(t, `{"id":"tr_1","status":"paid"}`, string(st.LastCallback))
	assert.Equal(t, 201, st.LastHTTPStatus)
}

func TestHandle_LateFailureAfterPaidIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.correlations.Record(ctx, correlation.Entry{Processor: ledger.ProcessorMollie, ExternalID: "tr_2", Ref: ref}))

	mollie := paymentStub{}
	adapter := reconcile.NewMollieAdapter(mollie)
	send := func(status string) reconcile.Outcome {
		mollie["tr_2"] = status

		return f.reconciler.Handle(ctx, adapter, reconcile.Callback{
			Body:        []byte("id=tr_2"),
			ContentType: "application/x-www-form-urlencoded",
		})
	}

	assert.Equal(t, reconcile.OutcomeApplied, send("paid"))
	assert.Equal(t, reconcile.OutcomeDuplicate, send("failed"))
	assert.Equal(t, ledger.PaymentPaid, f.get(t).PaymentStatus)
	assert.Equal(t, "tr_2", f.get(t).Refs.PaymentID)
}

func TestHandle_PaymentStatusComesFromProcessor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.correlations.Record(ctx, correlation.Entry{Processor: ledger.ProcessorMollie, ExternalID: "tr_3", Ref: ref}))

	mollie := paymentStub{"tr_3": "open"}
	adapter := reconcile.NewMollieAdapter(mollie)

	f.reconciler.Handle(ctx, adapter, reconcile.Callback{
		Body:        []byte(`{"id":"tr_3","status":"paid"}`),
		ContentType: "application/json",
	})

	tx := f.get(t)
	assert.Equal(t, ledger.PaymentOpen, tx.PaymentStatus)
	assert.JSONEq(t, `{"id":"tr_3","status":"open"}`, string(tx.RawState[ledger.ProcessorMollie].LastCallback))

	mollie["tr_3"] = "expired"

	outcome := f.reconciler.Handle(ctx, adapter, reconcile.Callback{
		Body:        []byte("id=tr_3"),
		ContentType: "application/x-www-form-urlencoded",
	})

	assert.Equal(t, reconcile.OutcomeApplied, outcome)
	assert.Equal(t, ledger.PaymentExpired, f.get(t).PaymentStatus)
}

func TestHandle_PayoutLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.correlations.Record(ctx, correlation.Entry{Processor: ledger.ProcessorPawaPay, ExternalID: "po-1", Ref: ref}))
	_, err := f.ledger.AttachPayout(ctx, ref, ledger.Exchange{Processor: ledger.ProcessorPawaPay, ExternalID: "po-1"})
	require.NoError(t, err)

	adapter := reconcile.NewPawaPayAdapter()
	send := func(body string) reconcile.Outcome {
		return f.reconciler.Handle(ctx, adapter, reconcile.Callback{Body: []byte(body), ContentType: "application/json"})
	}

	assert.Equal(t, reconcile.OutcomeApplied, send(`{"payoutId":"po-1","status":"ENQUEUED"}`))
	assert.Equal(t, ledger.PayoutProcessing, f.get(t).PayoutStatus)

	assert.Equal(t, reconcile.OutcomeApplied, send(`{"payout":{"payoutId":"po-1","payoutStatus":"SOMETHING_NEW"}}`))
	assert.Equal(t, ledger.PayoutUnknown, f.get(t).PayoutStatus)

	assert.Equal(t, reconcile.OutcomeApplied, send(`{"payoutId":"po-1","status":"COMPLETED"}`))
	assert.Equal(t, reconcile.OutcomeDuplicate, send(`{"payoutId":"po-1","status":"FAILED"}`))

	tx := f.get(t)
	assert.Equal(t, ledger.PayoutCompleted, tx.PayoutStatus)
	assert.Equal(t, ledger.PaymentInitiated, tx.PaymentStatus)
}

func TestHandle_ResolveGrace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	resolver := reconcile.NewMockResolver(ctrl)
	book := reconcile.NewMockLedger(ctrl)

	gomock.InOrder(
		resolver.EXPECT().Resolve(gomock.Any(), ledger.ProcessorPawaPay, "po-9").Return(ledger.Ref{}, correlation.ErrNotFound).Times(2),
		resolver.EXPECT().Resolve(gomock.Any(), ledger.ProcessorPawaPay, "po-9").Return(ref, nil),
	)

	book.EXPECT().
		ApplyPayoutStatus(gomock.Any(), ref, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ ledger.Ref, cb ledger.Callback) (ledger.Transition, error) {
			assert.Equal(t, "po-9", cb.ExternalID)
			assert.Equal(t, "PROCESSING", cb.RawStatus)

			return ledger.Transition{From: "accepted", To: "processing"}, nil
		})

	r := reconcile.New(resolver, book, reconcile.WithResolveGrace(time.Second, time.Millisecond))

	outcome := r.Handle(context.Background(), reconcile.NewPawaPayAdapter(), reconcile.Callback{
		Body: []byte(`{"payoutId":"po-9","status":"PROCESSING"}`),
	})
	assert.Equal(t, reconcile.OutcomeApplied, outcome)
}

func TestHandle_Failures(t *testing.T) {
	type testCase struct {
		name  string
		setup func(resolver *reconcile.MockResolver, book *reconcile.MockLedger)
	}

	tests := []testCase{
		{
			name: "Resolver error",
			setup: func(resolver *reconcile.MockResolver, book *reconcile.MockLedger) {
				resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Return(ledger.Ref{}, errors.New("db down"))
			},
		},
		{
			name: "Ledger error",
			setup: func(resolver *reconcile.MockResolver, book *reconcile.MockLedger) {
				resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Return(ref, nil)
				book.EXPECT().ApplyPaymentStatus(gomock.Any(), ref, gomock.Any()).Return(ledger.Transition{}, ledger.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			resolver := reconcile.NewMockResolver(ctrl)
			book := reconcile.NewMockLedger(ctrl)
			tt.setup(resolver, book)

			r := reconcile.New(resolver, book, reconcile.WithResolveGrace(0, time.Millisecond))
			outcome := r.Handle(context.Background(), reconcile.NewMollieAdapter(paymentStub{"tr_1": "paid"}), reconcile.Callback{
				Query: url.Values{"id": {"tr_1"}},
			})

			assert.Equal(t, reconcile.OutcomeFailed, outcome)
		})
	}
}

func TestHandle_CancelledWhileWaiting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	resolver := reconcile.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).Return(ledger.Ref{}, correlation.ErrNotFound).MinTimes(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	r := reconcile.New(resolver, reconcile.NewMockLedger(ctrl), reconcile.WithResolveGrace(time.Hour, 5*time.Millisecond))
	outcome := r.Handle(ctx, reconcile.NewPawaPayAdapter(), reconcile.Callback{
		Body: []byte(`{"payoutId":"po-x","status":"COMPLETED"}`),
	})

	assert.Equal(t, reconcile.OutcomeUnresolved, outcome)
}
