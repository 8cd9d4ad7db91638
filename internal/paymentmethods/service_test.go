package paymentmethods

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/autotradehub/autotradehub-backend/pkg/db/models"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

func setupPaymentMethodsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE payment_methods (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  payment_type TEXT NOT NULL,
  provider TEXT NOT NULL,
  account_details TEXT,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newPaymentMethodsFixture(t *testing.T) (Service, *gorm.DB, uuid.UUID) {
	t.Helper()

	db := setupPaymentMethodsTestDB(t)
	userID := uuid.New()
	require.NoError(t, db.Create(&models.User{
		ID:    userID,
		Email: "buyer@example.com",
		Name:  "Buyer",
	}).Error)

	svc, err := NewService(NewRepository(db), &testTxRunner{db: db})
	require.NoError(t, err)
	return svc, db, userID
}

func cardInput(isDefault bool) CreateInput {
	return CreateInput{
		PaymentType:    "card",
		Provider:       "visa",
		AccountDetails: json.RawMessage(`{"last4":"4242"}`),
		IsDefault:      isDefault,
	}
}

func TestCreateFirstMethodBecomesDefault(t *testing.T) {
	svc, _, userID := newPaymentMethodsFixture(t)

	view, err := svc.Create(context.Background(), userID, cardInput(false))
	require.NoError(t, err)
	require.True(t, view.IsDefault, "first method on file must default")
}

func TestCreateExplicitDefaultDethronesPrevious(t *testing.T) {
	svc, db, userID := newPaymentMethodsFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, cardInput(false))
	require.NoError(t, err)

	second, err := svc.Create(ctx, userID, CreateInput{
		PaymentType:    "bank_transfer",
		Provider:       "chase",
		AccountDetails: json.RawMessage(`{"account":"****1234"}`),
		IsDefault:      true,
	})
	require.NoError(t, err)
	require.True(t, second.IsDefault)

	var stored models.PaymentMethod
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	require.False(t, stored.IsDefault, "previous default must be cleared in the same transaction")

	var defaults int64
	require.NoError(t, db.Model(&models.PaymentMethod{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&defaults).Error)
	require.EqualValues(t, 1, defaults)
}

func TestCreateSecondNonDefaultStaysSecondary(t *testing.T) {
	svc, _, userID := newPaymentMethodsFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, cardInput(false))
	require.NoError(t, err)

	second, err := svc.Create(ctx, userID, CreateInput{
		PaymentType:    "wallet",
		Provider:       "paypal",
		AccountDetails: json.RawMessage(`{"email":"buyer@example.com"}`),
	})
	require.NoError(t, err)
	require.False(t, second.IsDefault)
}

func TestCreateValidation(t *testing.T) {
	svc, _, userID := newPaymentMethodsFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"unknown type", CreateInput{PaymentType: "crypto", Provider: "x", AccountDetails: json.RawMessage(`{}`)}},
		{"missing provider", CreateInput{PaymentType: "card", Provider: "  ", AccountDetails: json.RawMessage(`{}`)}},
		{"missing details", CreateInput{PaymentType: "card", Provider: "visa"}},
		{"broken details", CreateInput{PaymentType: "card", Provider: "visa", AccountDetails: json.RawMessage(`{oops`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, userID, tc.input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestCreateUnknownCustomer(t *testing.T) {
	svc, _, _ := newPaymentMethodsFixture(t)

	_, err := svc.Create(context.Background(), uuid.New(), cardInput(false))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListReturnsCustomerAndDefaultFirst(t *testing.T) {
	svc, _, userID := newPaymentMethodsFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, cardInput(false))
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, CreateInput{
		PaymentType:    "bank_transfer",
		Provider:       "chase",
		AccountDetails: json.RawMessage(`{"account":"****1234"}`),
		IsDefault:      true,
	})
	require.NoError(t, err)

	result, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, userID, result.Customer.ID)
	require.Equal(t, "buyer@example.com", result.Customer.Email)
	require.Len(t, result.PaymentMethods, 2)
	require.Equal(t, second.ID, result.PaymentMethods[0].ID, "default method sorts first")
}

func TestListUnknownCustomer(t *testing.T) {
	svc, _, _ := newPaymentMethodsFixture(t)

	_, err := svc.List(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
