package testutils

import (
	"io"

	"github.com/stretchr/testify/mock"
)

// MockExecutor records and stubs command executions. Tests install it in
// place of utils.Exec and program expectations with testify/mock.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Run(combined bool, cmd string, arguments ...string) ([]byte, error) {
	items := append(make([]any, 0), combined, cmd)
	for _, arg := range arguments {
		items = append(items, arg)
	}
	args := m.Called(items...)
	return []byte(args.String(0)), args.Error(1)
}

func (m *MockExecutor) Pipe(stdin io.Reader, combined bool, cmd string, arguments ...string) ([]byte, error) {
	items := append(make([]any, 0), stdin, combined, cmd)
	for _, arg := range arguments {
		items = append(items, arg)
	}
	args := m.Called(items...)
	return []byte(args.String(0)), args.Error(1)
}
