package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// NewMockQuerierForTest creates a new mock Querier for testing
func NewMockQuerierForTest(t *testing.T) *MockQuerier {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockQuerier(ctrl)
}

// NewMockLedgerGatewayForTest creates a new mock LedgerGateway for testing
func NewMockLedgerGatewayForTest(t *testing.T) *MockLedgerGateway {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockLedgerGateway(ctrl)
}

// NewMockNotifierForTest creates a new mock Notifier for testing
func NewMockNotifierForTest(t *testing.T) *MockNotifier {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockNotifier(ctrl)
}

// NewMockRateProviderForTest creates a new mock RateProvider for testing
func NewMockRateProviderForTest(t *testing.T) *MockRateProvider {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockRateProvider(ctrl)
}
