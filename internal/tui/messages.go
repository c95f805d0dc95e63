package tui

import "github.com/Veraticus/paycapture/internal/model"

type requestsLoadedMsg struct {
	err      error
	requests []model.PrefillRequest
}

type confirmedMsg struct {
	err    error
	record *model.Record
	id     string
}

type dismissedMsg struct {
	err error
	id  string
}
