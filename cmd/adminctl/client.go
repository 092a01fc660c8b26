package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"bondstream/internal/adminapi"
)

type apiError struct {
	Error string `json:"error"`
}

func newClient() *resty.Client {
	return resty.New().SetBaseURL(adminAddr)
}

func listInstruments(filterKey, filterValue string) ([]adminapi.InstrumentView, error) {
	var views []adminapi.InstrumentView
	var apiErr apiError

	req := newClient().R().SetResult(&views).SetError(&apiErr)
	if filterKey != "" {
		req.SetQueryParam(filterKey, filterValue)
	}
	resp, err := req.Get("/api/instruments")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list instruments: %s", apiErr.Error)
	}
	return views, nil
}

func getInstrument(id string) (*adminapi.InstrumentView, error) {
	var view adminapi.InstrumentView
	var apiErr apiError

	resp, err := newClient().R().SetResult(&view).SetError(&apiErr).Get("/api/instruments/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get instrument %q: %s", id, apiErr.Error)
	}
	return &view, nil
}

func insertInstrument(body []byte) (*adminapi.InstrumentView, error) {
	var view adminapi.InstrumentView
	var apiErr apiError

	resp, err := newClient().R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&view).
		SetError(&apiErr).
		Post("/api/instruments")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("insert instrument: %s", apiErr.Error)
	}
	return &view, nil
}

func removeInstrument(id string) error {
	var apiErr apiError

	resp, err := newClient().R().SetError(&apiErr).Delete("/api/instruments/" + id)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("remove instrument %q: %s", id, apiErr.Error)
	}
	return nil
}
