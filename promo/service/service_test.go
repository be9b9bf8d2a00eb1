package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvestors/promobot/core/logger"
	"github.com/tokenvestors/promobot/promo"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeStore struct {
	mu        sync.Mutex
	subs      map[string]*promo.Submission
	createErr error
	attachErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: make(map[string]*promo.Submission)}
}

func (f *fakeStore) Create(_ context.Context, sub *promo.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*promo.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return nil, promo.ErrSubmissionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeStore) AttachCharge(_ context.Context, id, chargeID string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return promo.ErrSubmissionNotFound
	}
	sub.ChargeID = &chargeID
	return nil
}

func (f *fakeStore) MarkPaid(_ context.Context, id string) (*promo.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return nil, promo.ErrSubmissionNotFound
	}
	if sub.Status == promo.StatusPaid {
		return nil, promo.ErrAlreadyPaid
	}
	sub.Status = promo.StatusPaid
	cp := *sub
	return &cp, nil
}

type fakeIssuer struct {
	charge *Charge
	err    error
	calls  int
}

func (f *fakeIssuer) CreateCharge(_ context.Context, _ float64, _ string, _ string) (*Charge, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.charge, nil
}

type fakePoster struct {
	mu   sync.Mutex
	subs []*promo.Submission
	err  error
}

func (f *fakePoster) Announce(_ context.Context, sub *promo.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
	return f.err
}

func (f *fakePoster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func completeDraft() promo.Draft {
	return promo.Draft{
		Chain:           promo.ChainETH,
		ContractAddress: "0x1234567890abcdef1234567890abcdef12345678",
		Description:     "desc",
		SocialLinks:     promo.LinkList{"https://example.com"},
		ChartURL:        "https://dexscreener.com/ethereum/0xpair",
	}
}

func TestSubmitPersistsAndCharges(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{charge: &Charge{ID: "ch_1", HostedURL: "https://commerce.coinbase.com/charges/ch_1"}}
	svc := New(store, issuer, NewPriceBoard(50), &fakePoster{})

	req := promo.Requester{UserID: 42, Username: "alice"}
	sub, payURL, err := svc.Submit(context.Background(), req, completeDraft())
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "https://commerce.coinbase.com/charges/ch_1", payURL)
	assert.Equal(t, 50.0, sub.PriceUSD)
	assert.Equal(t, 1, issuer.calls)

	stored, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, promo.StatusPending, stored.Status)
	assert.Equal(t, int64(42), stored.UserID)
	require.NotNil(t, stored.ChargeID)
	assert.Equal(t, "ch_1", *stored.ChargeID)
}

func TestSubmitSnapshotsPriceAtConfirm(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{charge: &Charge{ID: "ch_1", HostedURL: "u"}}
	prices := NewPriceBoard(50)
	svc := New(store, issuer, prices, &fakePoster{})

	sub, _, err := svc.Submit(context.Background(), promo.Requester{UserID: 1}, completeDraft())
	require.NoError(t, err)

	require.NoError(t, prices.Set(90))

	stored, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.PriceUSD, "later price changes do not touch existing submissions")
}

func TestSubmitChargeFailureLeavesPending(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{err: errors.New("api down")}
	svc := New(store, issuer, NewPriceBoard(50), &fakePoster{})

	sub, payURL, err := svc.Submit(context.Background(), promo.Requester{UserID: 1}, completeDraft())
	require.Error(t, err)
	require.NotNil(t, sub, "the submission is persisted before the charge call")
	assert.Empty(t, payURL)

	var perr *promo.ProviderError
	assert.ErrorAs(t, err, &perr)

	stored, getErr := store.Get(context.Background(), sub.ID)
	require.NoError(t, getErr)
	assert.Equal(t, promo.StatusPending, stored.Status)
	assert.Nil(t, stored.ChargeID)
}

func TestSubmitIncompleteDraft(t *testing.T) {
	svc := New(newFakeStore(), &fakeIssuer{}, NewPriceBoard(50), &fakePoster{})

	d := completeDraft()
	d.ChartURL = ""
	_, _, err := svc.Submit(context.Background(), promo.Requester{UserID: 1}, d)
	assert.Error(t, err)
}

func TestSubmitAttachChargeFailureIsSoft(t *testing.T) {
	store := newFakeStore()
	store.attachErr = errors.New("db hiccup")
	issuer := &fakeIssuer{charge: &Charge{ID: "ch_1", HostedURL: "u"}}
	svc := New(store, issuer, NewPriceBoard(50), &fakePoster{})

	// The webhook correlates by submission id, so a missing local charge
	// reference must not fail the intake.
	_, payURL, err := svc.Submit(context.Background(), promo.Requester{UserID: 1}, completeDraft())
	assert.NoError(t, err)
	assert.Equal(t, "u", payURL)
}

func TestConfirmPaymentFansOutExactlyOnce(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{charge: &Charge{ID: "ch_1", HostedURL: "u"}}
	poster := &fakePoster{}
	svc := New(store, issuer, NewPriceBoard(50), poster)

	sub, _, err := svc.Submit(context.Background(), promo.Requester{UserID: 7, Username: "bob"}, completeDraft())
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmPayment(context.Background(), sub.ID))
	assert.Equal(t, 1, poster.count())

	// Provider redelivery of the same event.
	err = svc.ConfirmPayment(context.Background(), sub.ID)
	assert.ErrorIs(t, err, promo.ErrAlreadyPaid)
	assert.Equal(t, 1, poster.count(), "duplicate confirmation must not post again")

	stored, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, promo.StatusPaid, stored.Status)
}

func TestConfirmPaymentUnknownSubmission(t *testing.T) {
	poster := &fakePoster{}
	svc := New(newFakeStore(), &fakeIssuer{}, NewPriceBoard(50), poster)

	err := svc.ConfirmPayment(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, promo.ErrSubmissionNotFound)
	assert.Equal(t, 0, poster.count())
}

func TestConfirmPaymentPosterFailureKeepsPaid(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{charge: &Charge{ID: "ch_1", HostedURL: "u"}}
	poster := &fakePoster{err: errors.New("channel unreachable")}
	svc := New(store, issuer, NewPriceBoard(50), poster)

	sub, _, err := svc.Submit(context.Background(), promo.Requester{UserID: 7}, completeDraft())
	require.NoError(t, err)

	assert.NoError(t, svc.ConfirmPayment(context.Background(), sub.ID), "posting failures never roll the payment back")

	stored, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, promo.StatusPaid, stored.Status)
}

// Full lifecycle: intake flow -> submit -> duplicate webhook confirmations ->
// one rendered announcement.
func TestEndToEndPromotion(t *testing.T) {
	store := newFakeStore()
	issuer := &fakeIssuer{charge: &Charge{ID: "ch_e2e", HostedURL: "https://pay.example/ch_e2e"}}
	poster := &fakePoster{}
	svc := New(store, issuer, NewPriceBoard(50), poster)

	d := &promo.Draft{}
	step, _ := promo.Advance(promo.StepNone, d, promo.Event{Kind: promo.EventStart})
	step, _ = promo.Advance(step, d, promo.Event{Kind: promo.EventChainSelected, Chain: promo.ChainETH})
	step, _ = promo.Advance(step, d, promo.Event{Kind: promo.EventText, Text: "0x1111111111111111111111111111111111111111"})
	step, _ = promo.Advance(step, d, promo.Event{Kind: promo.EventText, Text: "Test <token> & co"})
	step, _ = promo.Advance(step, d, promo.Event{Kind: promo.EventText, Text: "https://t.me/test https://x.com/test"})
	step, action := promo.Advance(step, d, promo.Event{Kind: promo.EventText, Text: "https://dexscreener.com/ethereum/0x1111"})
	require.Equal(t, promo.StepReview, step)
	require.Equal(t, promo.ActionShowReview, action)

	_, action = promo.Advance(step, d, promo.Event{Kind: promo.EventConfirm})
	require.Equal(t, promo.ActionSubmit, action)

	sub, payURL, err := svc.Submit(context.Background(), promo.Requester{UserID: 9, Username: "eve"}, *d)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/ch_e2e", payURL)

	require.NoError(t, svc.ConfirmPayment(context.Background(), sub.ID))
	assert.ErrorIs(t, svc.ConfirmPayment(context.Background(), sub.ID), promo.ErrAlreadyPaid)
	require.Equal(t, 1, poster.count())

	ann := promo.RenderAnnouncement(poster.subs[0], "@tokenvestors")
	assert.Contains(t, ann.Text, "Test &lt;token&gt; &amp; co")
	require.Len(t, ann.Buttons, 2)
	assert.Len(t, ann.Buttons[0], 1, "chart button row")
	assert.Len(t, ann.Buttons[1], 2, "two social buttons")
}

func TestPriceBoard(t *testing.T) {
	p := NewPriceBoard(50)
	assert.Equal(t, 50.0, p.Current())

	require.NoError(t, p.Set(75.5))
	assert.Equal(t, 75.5, p.Current())

	assert.Error(t, p.Set(0))
	assert.Error(t, p.Set(-10))
	assert.Equal(t, 75.5, p.Current(), "rejected writes leave the price untouched")
}
