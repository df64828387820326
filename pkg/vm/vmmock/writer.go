// Package vmmock provides a gomock-style mock of io.Writer for asserting
// exact `print` output in VM tests (spec §8, print-output scenarios). It is
// hand-written in the shape mockgen would produce from an io.Writer
// interface, rather than generated, since this module has no go:generate
// step wired to run mockgen.
package vmmock

import (
	"reflect"

	"go.uber.org/mock/gomock"
)

// MockWriter is a mock of io.Writer.
type MockWriter struct {
	ctrl     *gomock.Controller
	recorder *MockWriterMockRecorder
}

// MockWriterMockRecorder is the mock recorder for MockWriter.
type MockWriterMockRecorder struct {
	mock *MockWriter
}

// NewMockWriter returns a new mock of io.Writer.
func NewMockWriter(ctrl *gomock.Controller) *MockWriter {
	mock := &MockWriter{ctrl: ctrl}
	mock.recorder = &MockWriterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockWriter) EXPECT() *MockWriterMockRecorder {
	return m.recorder
}

// Write mocks base method.
func (m *MockWriter) Write(p []byte) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Write", p)
	n, _ := ret[0].(int)
	err, _ := ret[1].(error)
	return n, err
}

// Write indicates an expected call of Write.
func (mr *MockWriterMockRecorder) Write(p interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Write", reflect.TypeOf((*MockWriter)(nil).Write), p)
}
