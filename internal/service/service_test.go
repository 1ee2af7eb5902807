package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Egorka7485/tgkadsf/internal/events"
	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/repo"
	"github.com/Egorka7485/tgkadsf/internal/repo/repotest"
	"github.com/Egorka7485/tgkadsf/internal/transport"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
)

func ptr[T any](v T) *T { return &v }

type fakeIndex struct {
	indexed []uint
	deleted []uint
	hits    []models.Channel
	err     error
}

func (f *fakeIndex) Index(_ context.Context, ch models.Channel) error {
	f.indexed = append(f.indexed, ch.ID)
	return f.err
}

func (f *fakeIndex) Delete(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndex) Search(context.Context, string, int) ([]models.Channel, error) {
	return f.hits, f.err
}

type fixture struct {
	repo    *repo.GormRepo
	rec     *events.Recorder
	index   *fakeIndex
	catalog *CatalogService
	cart    *CartService
	chs     []models.Channel
}

func newFixture(t *testing.T, policy repo.LinePolicy) *fixture {
	r := repo.New(repotest.NewDB(t))
	rec := &events.Recorder{}
	ix := &fakeIndex{}
	return &fixture{
		repo:    r,
		rec:     rec,
		index:   ix,
		catalog: &CatalogService{Repo: r, Index: ix, Events: rec},
		cart:    &CartService{Repo: r, Policy: policy, Events: rec},
		chs:     repotest.SeedChannels(t, r.DB),
	}
}

func createRequest() transport.CreateChannelRequest {
	return transport.CreateChannelRequest{
		Name: "Startup Ideas", Description: "ideas", Username: "@startups", AvatarURL: "https://img.example/s.png",
		Category: "Business", Subscribers: ptr(int64(120000)), Views: ptr(int64(40000)), ERR: ptr(33.3), Price: ptr(int64(12000)),
	}
}

func TestGetChannelNotFound(t *testing.T) {
	f := newFixture(t, repo.LineAllow)

	_, err := f.catalog.GetChannel(context.Background(), 4040)
	assert.ErrorIs(t, err, ErrNotFound)

	ch, err := f.catalog.GetChannel(context.Background(), f.chs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.chs[0].Name, ch.Name)
}

func TestCreateChannelIndexesAndPublishes(t *testing.T) {
	f := newFixture(t, repo.LineAllow)

	ch, err := f.catalog.CreateChannel(context.Background(), createRequest())
	require.NoError(t, err)
	assert.Equal(t, models.PlatformTelegram, ch.Platform)
	assert.Equal(t, []uint{ch.ID}, f.index.indexed)

	got := f.rec.OfType(events.ChannelCreated)
	require.Len(t, got, 1)
	assert.Equal(t, events.TopicChannels, got[0].Topic)
	assert.Equal(t, ch.ID, got[0].Event.ChannelID)
	assert.Equal(t, "Startup Ideas", got[0].Event.Name)
}

func TestCreateChannelBlankName(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	req := createRequest()
	req.Name = "   "

	_, err := f.catalog.CreateChannel(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)
	var fe *transport.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Field)
}

func TestCreateChannelSurvivesIndexFailure(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	f.index.err = errors.New("es down")

	_, err := f.catalog.CreateChannel(context.Background(), createRequest())
	require.NoError(t, err)
}

func TestUpdateAndDeleteChannel(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	ctx := context.Background()
	id := f.chs[0].ID

	ch, err := f.catalog.UpdateChannel(ctx, id, transport.PatchChannelRequest{Price: ptr(int64(16000)), Username: ptr("@ti")})
	require.NoError(t, err)
	assert.EqualValues(t, 16000, ch.Price)
	assert.Equal(t, "@ti", ch.Handle)
	assert.Len(t, f.rec.OfType(events.ChannelUpdated), 1)

	_, err = f.catalog.UpdateChannel(ctx, 999, transport.PatchChannelRequest{Price: ptr(int64(1))})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.catalog.DeleteChannel(ctx, id))
	assert.Equal(t, []uint{id}, f.index.deleted)
	assert.Len(t, f.rec.OfType(events.ChannelDeleted), 1)
	assert.ErrorIs(t, f.catalog.DeleteChannel(ctx, id), ErrNotFound)
}

func TestSearchChannels(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	ctx := context.Background()

	f.index.hits = []models.Channel{{ID: 42, Name: "from index"}}
	got, err := f.catalog.SearchChannels(ctx, "tech", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 42, got[0].ID)

	f.index.err = errors.New("es down")
	got, err = f.catalog.SearchChannels(ctx, "tech", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tech Insider", got[0].Name)

	_, err = f.catalog.SearchChannels(ctx, " ", 5)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.catalog.SearchChannels(ctx, "tech", 1000)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchChannelsWithoutIndex(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	f.catalog.Index = nil

	got, err := f.catalog.SearchChannels(context.Background(), "e", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAddToCartErrors(t *testing.T) {
	f := newFixture(t, repo.LineReject)
	ctx := context.Background()

	_, _, err := f.cart.AddToCart(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = f.cart.AddToCart(ctx, 1, 9999)
	require.ErrorIs(t, err, ErrValidation)
	var fe *transport.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "channelId", fe.Field)

	_, created, err := f.cart.AddToCart(ctx, 1, f.chs[0].ID)
	require.NoError(t, err)
	assert.True(t, created)
	_, _, err = f.cart.AddToCart(ctx, 1, f.chs[0].ID)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Len(t, f.rec.OfType(events.CartItemAdded), 1)
}

func TestAddToCartIncrementPolicy(t *testing.T) {
	f := newFixture(t, repo.LineIncrement)
	ctx := context.Background()

	_, created, err := f.cart.AddToCart(ctx, 1, f.chs[0].ID)
	require.NoError(t, err)
	assert.True(t, created)
	item, created, err := f.cart.AddToCart(ctx, 1, f.chs[0].ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.EqualValues(t, 2, item.Quantity)
}

func TestRemoveFromCartPublishesOnlyOnDelete(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	ctx := context.Background()

	item, _, err := f.cart.AddToCart(ctx, 1, f.chs[0].ID)
	require.NoError(t, err)

	require.NoError(t, f.cart.RemoveFromCart(ctx, 1, 999999))
	assert.Empty(t, f.rec.OfType(events.CartItemRemoved))

	require.NoError(t, f.cart.RemoveFromCart(ctx, 1, item.ID))
	assert.Len(t, f.rec.OfType(events.CartItemRemoved), 1)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	ctx := context.Background()

	_, err := f.cart.Checkout(ctx, 1)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, _, err = f.cart.AddToCart(ctx, 1, f.chs[0].ID)
	require.NoError(t, err)
	_, _, err = f.cart.AddToCart(ctx, 1, f.chs[2].ID)
	require.NoError(t, err)

	order, err := f.cart.Checkout(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 23000, order.TotalAmount)

	got := f.rec.OfType(events.OrderCreated)
	require.Len(t, got, 1)
	assert.Equal(t, order.ID, got[0].Event.OrderID)
	assert.Equal(t, 2, got[0].Event.Items)

	cart, err := f.cart.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cart)

	orders, err := (&OrderService{Repo: f.repo}).ListOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestCheckoutIgnoresPublishFailure(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	f.rec.Err = errors.New("kafka down")
	ctx := context.Background()

	_, _, err := f.cart.AddToCart(ctx, 1, f.chs[0].ID)
	require.NoError(t, err)
	_, err = f.cart.Checkout(ctx, 1)
	require.NoError(t, err)
}

func TestEnsureAccount(t *testing.T) {
	f := newFixture(t, repo.LineAllow)
	users := &UserService{Repo: f.repo}
	ctx := context.Background()

	id, err := users.EnsureAccount(ctx, middleware.Account{Username: "alice"})
	require.NoError(t, err)
	again, err := users.EnsureAccount(ctx, middleware.Account{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	u, err := users.Current(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = users.EnsureAccount(ctx, middleware.Account{})
	assert.ErrorIs(t, err, ErrValidation)
}
