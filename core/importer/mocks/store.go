package mocks

import (
	"context"

	"inventory-import/core/importer"

	"github.com/stretchr/testify/mock"
)

// ItemStore is a mock implementation of importer.ItemStore
type ItemStore struct {
	mock.Mock
}

func (m *ItemStore) Lookup(ctx context.Context, sku, name string) (importer.ItemRef, bool, error) {
	args := m.Called(ctx, sku, name)
	ref, _ := args.Get(0).(importer.ItemRef)
	return ref, args.Bool(1), args.Error(2)
}

func (m *ItemStore) Create(ctx context.Context, fields importer.Fields) (importer.ItemID, error) {
	args := m.Called(ctx, fields)
	id, _ := args.Get(0).(importer.ItemID)
	return id, args.Error(1)
}

func (m *ItemStore) Update(ctx context.Context, id importer.ItemID, fields importer.Fields) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}
