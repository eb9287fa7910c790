package usage

import (
	"errors"
	"math"
	"testing"
)

func TestParseSeries(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLen   int
		wantErr   error
		wantUsers []int64
	}{
		{name: "empty array", body: `[]`, wantLen: 0},
		{name: "null", body: `null`, wantLen: 0},
		{name: "missing PERIODE anywhere", body: `[{"PERIODE":"20260101","TRAFIK":"1"},{"TRAFIK":"2"}]`, wantLen: 0},
		{name: "non numeric coerced", body: `[{"PERIODE":"20260101","USAGES":"n/a","TRAFIK":"x"}]`, wantLen: 1, wantUsers: []int64{0}},
		{name: "absent fields default", body: `[{"PERIODE":"20260101"}]`, wantLen: 1, wantUsers: []int64{0}},
		{name: "bad date dropped", body: `[{"PERIODE":"2026-01-01","TRAFIK":"5"},{"PERIODE":"20260102","TRAFIK":"6"}]`, wantLen: 1, wantUsers: []int64{6}},
		{name: "duplicate days summed", body: `[{"PERIODE":"20260101","TRAFIK":"5"},{"PERIODE":"20260101","TRAFIK":"6"}]`, wantLen: 1, wantUsers: []int64{11}},
		{name: "sorted ascending", body: `[{"PERIODE":"20260103","TRAFIK":"3"},{"PERIODE":"20260101","TRAFIK":"1"},{"PERIODE":"20260102","TRAFIK":"2"}]`, wantLen: 3, wantUsers: []int64{1, 2, 3}},
		{name: "negative clamped", body: `[{"PERIODE":"20260101","TRAFIK":"-4"}]`, wantLen: 1, wantUsers: []int64{0}},
		{name: "huge users saturate", body: `[{"PERIODE":"20260101","TRAFIK":"1e30"}]`, wantLen: 1, wantUsers: []int64{math.MaxInt64}},
		{name: "duplicate huge users saturate", body: `[{"PERIODE":"20260101","TRAFIK":"9e18"},{"PERIODE":"20260101","TRAFIK":"9e18"}]`, wantLen: 1, wantUsers: []int64{math.MaxInt64}},
		{name: "html", body: `<html></html>`, wantErr: ErrMalformedResponse},
		{name: "blank", body: `   `, wantErr: ErrMalformedResponse},
		{name: "object", body: `{"error":"session"}`, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := ParseSeries([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSeries() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSeries() failed: %v", err)
			}
			if len(series) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(series), tt.wantLen)
			}
			for i, want := range tt.wantUsers {
				if series[i].ConnectedUsers != want {
					t.Errorf("point %d users = %d, want %d", i, series[i].ConnectedUsers, want)
				}
			}
		})
	}
}
