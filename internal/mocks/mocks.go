// Package mocks provides testify mocks for the domain ports.
package mocks

import (
	"context"

	"github.com/campoverde/currency-sync-service/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockRateSource mocks the RateSource interface.
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchRates(ctx context.Context, kinds []entity.RateKind) (map[entity.RateKind]entity.ExchangeRate, error) {
	args := m.Called(ctx, kinds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.RateKind]entity.ExchangeRate), args.Error(1)
}

// MockStateStore mocks the StateStore interface.
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) SaveRates(ctx context.Context, snapshot entity.RateSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockStateStore) LoadRates(ctx context.Context) (*entity.RateSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateSnapshot), args.Error(1)
}

func (m *MockStateStore) SaveSelection(ctx context.Context, selection entity.Selection) error {
	args := m.Called(ctx, selection)
	return args.Error(0)
}

func (m *MockStateStore) LoadSelection(ctx context.Context) (*entity.Selection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Selection), args.Error(1)
}
