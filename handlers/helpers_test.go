package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/cup-engine/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing edition", fmt.Errorf("failed to load edition 3: %w", services.ErrEditionNotFound), http.StatusNotFound},
		{"completed edition", services.ErrEditionCompleted, http.StatusConflict},
		{"duplicate competition", services.ErrCompetitionConflict, http.StatusConflict},
		{"bad definition", fmt.Errorf("%w: name is required", services.ErrInvalidCompetition), http.StatusUnprocessableEntity},
		{"simulator failure inside a round", &services.RoundError{
			Competition: "FA Cup", RoundOrder: 3, Stage: "simulate", Err: services.ErrSimulationFailed,
		}, http.StatusBadGateway},
		{"invalid transition inside a round", &services.RoundError{
			Competition: "FA Cup", RoundOrder: 3, Stage: "draw", Err: services.ErrInvalidRoundTransition,
		}, http.StatusConflict},
		{"anything else", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"cup"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"unknown key", `{"title":"cup"}`, "unknown key"},
		{"wrong type", `{"name":7}`, `incorrect JSON type for field "name"`},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
		{"truncated", `{"name":`, "badly-formed JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst payload
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := readJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "cup", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
