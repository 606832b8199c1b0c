package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAdminOrderUsecase_UpdateStatus_CancelRestocksItems(t *testing.T) {
	tm, r := newTxManagerStub()
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(tm, auditRepo)
	ctx := context.Background()

	r.orders.On("FindByID", ctx, int64(77)).Return(model.Order{
		ID: 77, UserID: 1, Status: model.OrderStatusPaid,
	}, nil)
	r.orderItems.On("ListByOrderID", ctx, int64(77)).Return([]model.OrderItem{
		{ID: 1, OrderID: 77, ProductID: 7, Quantity: 2},
		{ID: 2, OrderID: 77, ProductID: 8, Quantity: 1},
	}, nil)
	r.inventory.On("IncreaseStock", ctx, int64(7), int64(2)).Return(nil)
	r.inventory.On("IncreaseStock", ctx, int64(8), int64(1)).Return(nil)
	r.orders.On("UpdateStatus", ctx, int64(77), model.OrderStatusCanceled).Return(nil)
	auditRepo.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 2 &&
			l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 77 &&
			l.BeforeJSON == `{"status":"PAID"}` &&
			l.AfterJSON == `{"status":"CANCELED"}`
	})).Return(nil)

	err := uc.UpdateStatus(ctx, 2, 77, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})

	assert.NoError(t, err)
	r.inventory.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	tm, r := newTxManagerStub()
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewAdminOrderUsecase(tm, auditRepo)
	ctx := context.Background()

	r.orders.On("FindByID", ctx, int64(77)).Return(model.Order{
		ID: 77, Status: model.OrderStatusPaid,
	}, nil)

	err := uc.UpdateStatus(ctx, 2, 77, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})

	assert.NoError(t, err)
	r.orders.AssertNotCalled(t, "UpdateStatus")
	auditRepo.AssertNotCalled(t, "Create")
}

func TestAdminOrderUsecase_UpdateStatus_CanceledIsTerminal(t *testing.T) {
	tm, r := newTxManagerStub()
	uc := usecase.NewAdminOrderUsecase(tm, new(AuditRepoMock))
	ctx := context.Background()

	r.orders.On("FindByID", ctx, int64(77)).Return(model.Order{
		ID: 77, Status: model.OrderStatusCanceled,
	}, nil)

	err := uc.UpdateStatus(ctx, 2, 77, usecase.AdminUpdateOrderStatusInput{Status: "PAID"})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "cannot change canceled order")
}

func TestAdminOrderUsecase_UpdateStatus_ShippedIsTerminal(t *testing.T) {
	tm, r := newTxManagerStub()
	uc := usecase.NewAdminOrderUsecase(tm, new(AuditRepoMock))
	ctx := context.Background()

	r.orders.On("FindByID", ctx, int64(77)).Return(model.Order{
		ID: 77, Status: model.OrderStatusShipped,
	}, nil)

	err := uc.UpdateStatus(ctx, 2, 77, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "cannot change shipped order")
	r.inventory.AssertNotCalled(t, "IncreaseStock")
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	tm, _ := newTxManagerStub()
	uc := usecase.NewAdminOrderUsecase(tm, new(AuditRepoMock))

	err := uc.UpdateStatus(context.Background(), 2, 77, usecase.AdminUpdateOrderStatusInput{Status: "REFUNDED"})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_List_FilterPassedThrough(t *testing.T) {
	tm, r := newTxManagerStub()
	uc := usecase.NewAdminOrderUsecase(tm, new(AuditRepoMock))
	ctx := context.Background()

	f := repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "PAID"}
	r.orders.On("ListAdmin", ctx, f).Return([]model.Order{
		{ID: 77, UserID: 1, Status: model.OrderStatusPaid},
	}, int64(1), nil)
	r.orderItems.On("ListByOrderID", ctx, int64(77)).Return([]model.OrderItem{}, nil)

	outs, err := uc.List(ctx, f)

	assert.NoError(t, err)
	assert.Len(t, outs, 1)
	assert.Equal(t, "PAID", outs[0].Status)
	r.orders.AssertExpectations(t)
}

func TestAdminOrderUsecase_List_InvalidLimit(t *testing.T) {
	tm, _ := newTxManagerStub()
	uc := usecase.NewAdminOrderUsecase(tm, new(AuditRepoMock))

	_, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 1000})

	assertHTTPStatus(t, err, 400)
	assertErrContains(t, err, "invalid limit")
}
