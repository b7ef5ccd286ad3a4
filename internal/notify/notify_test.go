package notify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"travel-guardian-backend/internal/model"
	"travel-guardian-backend/internal/store"
	"travel-guardian-backend/pkg/logger"
)

func TestChannelsFor(t *testing.T) {
	assert.Equal(t, []string{ChannelWebPush, ChannelEmail, ChannelSMS}, ChannelsFor(model.SeverityCritical))
	assert.Equal(t, []string{ChannelWebPush, ChannelEmail}, ChannelsFor(model.SeverityWarning))
	assert.Equal(t, []string{ChannelWebPush, ChannelEmail}, ChannelsFor(model.SeverityMoney))
	assert.Equal(t, []string{ChannelWebPush}, ChannelsFor(model.SeverityInfo))
}

type recordedSend struct {
	endpoint string
	payload  string
}

// fakePushSender records sends and answers with a canned status code.
type fakePushSender struct {
	mu     sync.Mutex
	status int
	sends  []recordedSend
}

func (f *fakePushSender) Send(payload []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, recordedSend{endpoint: sub.Endpoint, payload: string(payload)})
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func setupNotifyStore(t *testing.T) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.PushSubscription{}))
	return store.NewGormStore(db)
}

func TestWebPushChannelSendsToAllSubscriptions(t *testing.T) {
	s := setupNotifyStore(t)
	require.NoError(t, s.DB().Create(&model.PushSubscription{
		Endpoint: "https://push.example.com/a", UserID: "user-1", P256DH: "k", Auth: "a",
	}).Error)
	require.NoError(t, s.DB().Create(&model.PushSubscription{
		Endpoint: "https://push.example.com/b", UserID: "user-1", P256DH: "k", Auth: "a",
	}).Error)

	sender := &fakePushSender{status: http.StatusCreated}
	ch := NewWebPushChannel(s, &webpush.Options{}, logger.NewNop()).WithSender(sender)

	err := ch.Send(context.Background(), Payload{
		UserID:   "user-1",
		Type:     model.AlertDisruption,
		Severity: model.SeverityCritical,
		Title:    "Flight LH400 delayed",
		Message:  "Delayed by 190 minutes.",
	})
	require.NoError(t, err)
	assert.Len(t, sender.sends, 2)
	assert.Contains(t, sender.sends[0].payload, "Flight LH400 delayed")
}

func TestWebPushChannelDeletesGoneSubscription(t *testing.T) {
	s := setupNotifyStore(t)
	require.NoError(t, s.DB().Create(&model.PushSubscription{
		Endpoint: "https://push.example.com/gone", UserID: "user-1", P256DH: "k", Auth: "a",
	}).Error)

	sender := &fakePushSender{status: http.StatusGone}
	ch := NewWebPushChannel(s, &webpush.Options{}, logger.NewNop()).WithSender(sender)

	err := ch.Send(context.Background(), Payload{UserID: "user-1", Severity: model.SeverityInfo})
	require.NoError(t, err)

	subs, err := s.SubscriptionsForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, subs, "410 should remove the subscription")
}

// countingChannel records deliveries per channel name.
type countingChannel struct {
	name string
	mu   sync.Mutex
	got  []Payload
}

func (c *countingChannel) Name() string { return c.name }

func (c *countingChannel) Send(_ context.Context, p Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, p)
	return nil
}

func (c *countingChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func TestPoolRoutesBySeverity(t *testing.T) {
	push := &countingChannel{name: ChannelWebPush}
	email := &countingChannel{name: ChannelEmail}
	sms := &countingChannel{name: ChannelSMS}

	pool := NewPool(2, []Channel{push, email, sms}, logger.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	pool.Dispatch(Payload{UserID: "u", Severity: model.SeverityCritical, Title: "c"})
	pool.Dispatch(Payload{UserID: "u", Severity: model.SeverityInfo, Title: "i"})

	require.Eventually(t, func() bool {
		return push.count() == 2 && email.count() == 1 && sms.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPoolSkipsUnregisteredChannel(t *testing.T) {
	push := &countingChannel{name: ChannelWebPush}

	// No SMS gateway configured: a critical payload still reaches push.
	pool := NewPool(1, []Channel{push}, logger.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	pool.Dispatch(Payload{UserID: "u", Severity: model.SeverityCritical, Title: "c"})

	require.Eventually(t, func() bool { return push.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}
