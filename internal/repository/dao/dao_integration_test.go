package dao

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	testDB  *gorm.DB
	testDSN string
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, dao integration tests will be skipped: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env:        []string{"POSTGRES_PASSWORD=secret", "POSTGRES_DB=civeni"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres: %v", err)
	}
	_ = resource.Expire(180)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s/civeni?sslmode=disable", resource.GetHostPort("5432/tcp"))
	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err = sqlDB.Ping(); err != nil {
			return err
		}
		testDB = db
		testDSN = dsn
		return nil
	})
	if err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("could not connect to postgres: %v", err)
	}

	if err = InitTables(testDB); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("could not migrate: %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Printf("could not purge postgres: %v", err)
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()

	if testDB == nil {
		t.Skip("postgres container not available")
	}
}

func TestStripeDAO_EventLifecycle(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	d := NewStripeDAO(testDB)

	now := time.Now().UTC()
	staleBefore := now.Add(-5 * time.Minute)
	event := StripeEvent{
		ID:         "evt_" + uuid.NewString(),
		Type:       "charge.succeeded",
		Status:     "processing",
		Payload:    []byte(`{"id":"evt"}`),
		Created:    now,
		ReceivedAt: now,
		ClaimedAt:  &now,
	}
	require.NoError(t, d.InsertEvent(ctx, event))
	assert.ErrorIs(t, d.InsertEvent(ctx, event), ErrEventAlreadyExists)

	reclaimed, err := d.ReclaimEvent(ctx, event.ID, event.Payload, now, staleBefore)
	require.NoError(t, err)
	assert.False(t, reclaimed, "a live claim cannot be taken over")

	require.NoError(t, d.FinishEvent(ctx, event.ID, "error", "boom", time.Now()))

	reclaimed, err = d.ReclaimEvent(ctx, event.ID, event.Payload, now, staleBefore)
	require.NoError(t, err)
	assert.True(t, reclaimed)

	reclaimed, err = d.ReclaimEvent(ctx, event.ID, event.Payload, now, staleBefore)
	require.NoError(t, err)
	assert.False(t, reclaimed)

	require.NoError(t, d.FinishEvent(ctx, event.ID, "processed", "", time.Now()))
	stored, err := d.FindEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "processed", stored.Status)
	assert.NotNil(t, stored.ProcessedAt)

	_, err = d.FindEvent(ctx, "evt_missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestStripeDAO_ReclaimAbandonedClaim(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	d := NewStripeDAO(testDB)

	now := time.Now().UTC()
	claimed := now.Add(-10 * time.Minute)
	event := StripeEvent{
		ID:         "evt_" + uuid.NewString(),
		Type:       "charge.succeeded",
		Status:     "processing",
		Payload:    []byte(`{"id":"evt"}`),
		Created:    claimed,
		ReceivedAt: claimed,
		ClaimedAt:  &claimed,
	}
	require.NoError(t, d.InsertEvent(ctx, event))

	reclaimed, err := d.ReclaimEvent(ctx, event.ID, event.Payload, now, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.True(t, reclaimed, "an abandoned claim is taken over")

	stored, err := d.FindEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "processing", stored.Status)
	require.NotNil(t, stored.ClaimedAt)
	assert.WithinDuration(t, now, *stored.ClaimedAt, time.Second)

	reclaimed, err = d.ReclaimEvent(ctx, event.ID, event.Payload, now, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, reclaimed, "the new claim is live")
}

func TestCatalogDAO_CouponUsageLimit(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	d := NewCatalogDAO(testDB)

	limit := 1
	code := "LIMIT-" + uuid.NewString()[:8]
	require.NoError(t, testDB.Create(&Coupon{
		Code:          code,
		DiscountType:  "percentage",
		DiscountValue: 50,
		UsageLimit:    &limit,
		IsActive:      true,
	}).Error)

	require.NoError(t, d.IncrementCouponUsage(ctx, strings.ToLower(code)))
	assert.ErrorIs(t, d.IncrementCouponUsage(ctx, code), ErrCouponExhausted)

	coupon, err := d.FindCouponByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsageCount)

	require.NoError(t, d.ReleaseCouponUsage(ctx, code))
	require.NoError(t, d.IncrementCouponUsage(ctx, code))

	assert.ErrorIs(t, d.IncrementCouponUsage(ctx, "MISSING-"+code), ErrCouponNotFound)
}

func TestStripeDAO_UpsertChargeAndRefresh(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	d := NewStripeDAO(testDB)
	f := NewFinanceDAO(testDB)

	created := time.Date(2025, 11, 18, 12, 0, 0, 0, time.UTC)
	charge := StripeCharge{
		ID:       "ch_" + uuid.NewString(),
		Amount:   7000,
		Fee:      399,
		Currency: "brl",
		Status:   "succeeded",
		Paid:     true,
		Metadata: map[string]string{"coupon_code": "CIVENI10"},
		Created:  created,
	}
	require.NoError(t, d.UpsertCharge(ctx, charge))

	charge.AmountRefunded = 1000
	require.NoError(t, d.UpsertCharge(ctx, charge))

	charges, err := f.ListSucceededCharges(ctx, created.Add(-time.Hour), created.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, charges, 1)
	assert.Equal(t, int64(1000), charges[0].AmountRefunded)
	assert.Equal(t, "CIVENI10", charges[0].Metadata["coupon_code"])

	require.NoError(t, d.RefreshFinanceDaily(ctx))
	daily, err := f.DailyAggregates(ctx, created.Add(-24*time.Hour), created.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, daily)
	assert.Equal(t, int64(7000-1000-399), daily[0].NetCents)
}

func TestFinanceDAO_DailyBucketsAreUTC(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	// A session in UTC-3 must still bucket by UTC day.
	local, err := gorm.Open(postgres.Open(testDSN+"&timezone=America/Sao_Paulo"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	d := NewStripeDAO(local)
	f := NewFinanceDAO(local)

	late := time.Date(2025, 10, 5, 1, 30, 0, 0, time.UTC)
	for i, created := range []time.Time{late, late.Add(20 * time.Hour)} {
		require.NoError(t, d.UpsertCharge(ctx, StripeCharge{
			ID:       fmt.Sprintf("ch_utc_%d_%s", i, uuid.NewString()),
			Amount:   5000,
			Fee:      200,
			Currency: "brl",
			Status:   "succeeded",
			Paid:     true,
			Created:  created,
		}))
	}
	require.NoError(t, d.RefreshFinanceDaily(ctx))

	from := time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC)
	daily, err := f.DailyAggregates(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.True(t, daily[0].Bucket.Equal(time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)), "bucket %s", daily[0].Bucket)
	assert.Equal(t, int64(2), daily[0].ConfirmedPayments)

	charges, err := f.ListSucceededCharges(ctx, from, to)
	require.NoError(t, err)
	var gross int64
	for _, c := range charges {
		gross += c.Amount
	}
	assert.Equal(t, gross, daily[0].GrossCents)
}

func TestRegistrationDAO_OneShotCompletion(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	d := NewRegistrationDAO(testDB)

	registration, err := d.Insert(ctx, Registration{
		Email:         "ana@example.com",
		FullName:      "Ana Souza",
		CategoryID:    uuid.New(),
		PaymentStatus: "pending",
		AmountCents:   7000,
	})
	require.NoError(t, err)

	sessionID := "cs_" + uuid.NewString()
	require.NoError(t, d.AttachSession(ctx, registration.ID, sessionID, "started"))

	found, err := d.FindBySessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, registration.ID, found.ID)

	changed, err := d.MarkCompleted(ctx, registration.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = d.MarkCompleted(ctx, registration.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	n := Notification{
		RegistrationID: registration.ID,
		Kind:           "payment_confirmed",
		Channel:        "email",
		Recipient:      "ana@example.com",
		Payload:        map[string]string{"session_id": sessionID},
	}
	queued, err := d.InsertNotification(ctx, n)
	require.NoError(t, err)
	assert.True(t, queued)

	queued, err = d.InsertNotification(ctx, n)
	require.NoError(t, err)
	assert.False(t, queued)
}
