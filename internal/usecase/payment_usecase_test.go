package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type paymentUCFixture struct {
	orders   *OrderRepoMock
	payments *PaymentRepoMock
	tx       *TxManagerMock
	uc       *PaymentUsecase
}

func newPaymentUCFixture() *paymentUCFixture {
	f := &paymentUCFixture{
		orders:   &OrderRepoMock{},
		payments: &PaymentRepoMock{},
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{
		orders:     f.orders,
		orderLines: &OrderLineRepoMock{},
		payments:   f.payments,
		menuItems:  testCatalog(),
		auditLogs:  &AuditRepoMock{},
	}}
	f.uc = NewPaymentUsecase(f.tx)
	return f
}

func paymentInput() RecordPaymentInput {
	return RecordPaymentInput{
		Gateway:       "stripe",
		TransactionID: "txn_12345",
		Amount:        dec("34.98"),
		Status:        "succeeded",
		Method:        "card",
	}
}

func TestRecordPayment_OK(t *testing.T) {
	f := newPaymentUCFixture()
	paidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f.orders.On("FindByID", mock.Anything, int64(1)).Return(pendingOrder(1, customer.UserID), nil).Once()

	var stored model.Payment
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("model.Payment")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(model.Payment) }).
		Return(model.Payment{ID: 5, OrderID: 1, Gateway: "stripe", TransactionID: "txn_12345", Amount: dec("34.98"), Status: "succeeded", Method: "card", PaidAt: &paidAt}, nil).Once()

	in := paymentInput()
	in.PaidAt = &paidAt

	out, err := f.uc.RecordPayment(context.Background(), staff, 1, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), out.ID)
	assert.Equal(t, "txn_12345", out.TransactionID)
	assertDecimal(t, "34.98", out.Amount)

	assert.Equal(t, int64(1), stored.OrderID)
	assert.Equal(t, "stripe", stored.Gateway)

	f.payments.AssertExpectations(t)
}

func TestRecordPayment_DuplicateTransaction(t *testing.T) {
	f := newPaymentUCFixture()
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(pendingOrder(1, customer.UserID), nil).Twice()

	f.payments.On("Create", mock.Anything, mock.Anything).
		Return(model.Payment{ID: 5}, nil).Once()
	f.payments.On("Create", mock.Anything, mock.Anything).
		Return(model.Payment{}, repo.ErrConflict).Once()

	//1回目は成功
	first, err := f.uc.RecordPayment(context.Background(), staff, 1, paymentInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(5), first.ID)

	//同じtransaction_idの2回目はコンフリクト
	_, err = f.uc.RecordPayment(context.Background(), staff, 1, paymentInput())
	assertCode(t, err, http.StatusConflict, CodeDuplicateTransaction)
}

func TestRecordPayment_OrderNotFound(t *testing.T) {
	f := newPaymentUCFixture()
	f.orders.On("FindByID", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound).Once()

	_, err := f.uc.RecordPayment(context.Background(), staff, 99, paymentInput())
	assertCode(t, err, http.StatusNotFound, CodeOrderNotFound)

	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordPayment_CustomerForbidden(t *testing.T) {
	f := newPaymentUCFixture()

	_, err := f.uc.RecordPayment(context.Background(), customer, 1, paymentInput())
	assertCode(t, err, http.StatusForbidden, CodeForbidden)

	assert.Equal(t, 0, f.tx.Calls)
}

func TestRecordPayment_Validation(t *testing.T) {
	mutate := map[string]func(*RecordPaymentInput){
		"empty gateway":        func(in *RecordPaymentInput) { in.Gateway = "" },
		"empty transaction id": func(in *RecordPaymentInput) { in.TransactionID = "   " },
		"zero amount":          func(in *RecordPaymentInput) { in.Amount = dec("0") },
		"negative amount":      func(in *RecordPaymentInput) { in.Amount = dec("-5.00") },
		"empty status":         func(in *RecordPaymentInput) { in.Status = "" },
	}

	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			f := newPaymentUCFixture()
			in := paymentInput()
			fn(&in)

			_, err := f.uc.RecordPayment(context.Background(), staff, 1, in)
			assertCode(t, err, http.StatusBadRequest, CodeValidation)
			assert.Equal(t, 0, f.tx.Calls)
		})
	}
}

func TestListPayments_ReturnsAttemptsInCreationOrder(t *testing.T) {
	f := newPaymentUCFixture()
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(pendingOrder(1, customer.UserID), nil).Once()
	f.payments.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.Payment{
		{ID: 1, OrderID: 1, TransactionID: "txn_a", Status: "failed"},
		{ID: 2, OrderID: 1, TransactionID: "txn_b", Status: "succeeded"},
	}, nil).Once()

	out, err := f.uc.ListPayments(context.Background(), customer, 1)
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "txn_a", out[0].TransactionID)
	assert.Equal(t, "txn_b", out[1].TransactionID)
}

func TestListPayments_OtherCustomerForbidden(t *testing.T) {
	f := newPaymentUCFixture()
	f.orders.On("FindByID", mock.Anything, int64(1)).Return(pendingOrder(1, customer.UserID), nil).Once()

	_, err := f.uc.ListPayments(context.Background(), otherCustomer, 1)
	assertCode(t, err, http.StatusForbidden, CodeForbidden)

	f.payments.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}
