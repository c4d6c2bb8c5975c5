//go:build !linux

package sockets

import (
	nwerrors "Go2NetWatch/internal/errors"
	"Go2NetWatch/internal/model"
)

type procfsSource struct{}

func newProcfsSource(string) Source { return &procfsSource{} }

func (s *procfsSource) Name() string { return "procfs" }

func (s *procfsSource) List() ([]model.ConnectionRecord, error) {
	return nil, nwerrors.New(nwerrors.KindUnavailable, "procfs socket tables are only available on linux")
}
