package repositories

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/mock"

	infraNeo4j "github.com/turtacn/keyip-citation-network/internal/infrastructure/database/neo4j"
)

// MockInfraDriver implements infraNeo4j.DriverInterface and runs work against tx.
type MockInfraDriver struct {
	mock.Mock
	tx infraNeo4j.Transaction
}

func (m *MockInfraDriver) ExecuteRead(ctx context.Context, work infraNeo4j.TransactionWork) (any, error) {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return work(m.tx)
}

func (m *MockInfraDriver) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockInfraTransaction implements infraNeo4j.Transaction
type MockInfraTransaction struct {
	mock.Mock
}

func (m *MockInfraTransaction) Run(ctx context.Context, cypher string, params map[string]any) (infraNeo4j.Result, error) {
	args := m.Called(ctx, cypher, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(infraNeo4j.Result), args.Error(1)
}

// MockResult replays Records in order.
type MockResult struct {
	Records []*neo4j.Record
	Current int
	Error   error
}

func (m *MockResult) Next(context.Context) bool {
	if m.Current < len(m.Records) {
		m.Current++
		return true
	}
	return false
}

func (m *MockResult) Record() *neo4j.Record {
	if m.Current == 0 || m.Current > len(m.Records) {
		return nil
	}
	return m.Records[m.Current-1]
}

func (m *MockResult) Err() error { return m.Error }

func (m *MockResult) Consume(context.Context) (neo4j.ResultSummary, error) { return nil, nil }

// NewRecord builds a record with values.
func NewRecord(keys []string, values []any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func setupMockDriver() (*MockInfraDriver, *MockInfraTransaction) {
	tx := new(MockInfraTransaction)
	d := &MockInfraDriver{tx: tx}
	return d, tx
}

//Personal.AI order the ending
