package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func evmStore(t *testing.T) (*Store, int) {
	t.Helper()
	s := newTestStore(t)
	if err := s.AddResource(Resource{Name: "dev", MaxHoursPerDay: 8, BillingRate: 100}); err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	id := mustAdd(t, s, Task{Name: "build", Start: jan(1), End: jan(5), Resources: assign("dev", 100)}, NoParent)
	if _, err := s.CreateBaseline("plan"); err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}
	upd := mustGet(t, s, id)
	upd.PercentComplete = 40
	if err := s.UpdateTask(id, upd); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	return s, id
}

func TestEarnedValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status time.Time
		want   EVMetrics
	}{
		{
			name:   "midway",
			status: jan(3),
			want: EVMetrics{
				PV: 2400, EV: 1600, AC: 2400, BAC: 4000,
				CV: -800, SV: -800, CPI: 2.0 / 3, SPI: 2.0 / 3,
				EAC: 6000, VAC: -2000,
			},
		},
		{
			name:   "before start",
			status: jan(1),
			want: EVMetrics{
				EV: 1600, BAC: 4000, CV: 1600, SV: 1600,
				CPI: 1, SPI: 1, EAC: 4000,
			},
		},
		{
			name:   "after finish",
			status: jan(15),
			want: EVMetrics{
				PV: 4000, EV: 1600, AC: 4000, BAC: 4000,
				CV: -2400, SV: -2400, CPI: 0.4, SPI: 0.4,
				EAC: 10000, VAC: -6000,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, id := evmStore(t)
			rep, err := s.EarnedValue("plan", tt.status)
			if err != nil {
				t.Fatalf("EarnedValue: %v", err)
			}
			if len(rep.Tasks) != 1 || rep.Tasks[0].TaskID != id {
				t.Fatalf("rows = %+v, want one row for task %d", rep.Tasks, id)
			}
			approx := cmpopts.EquateApprox(0, 1e-9)
			if diff := cmp.Diff(tt.want, rep.Tasks[0].EVMetrics, approx); diff != "" {
				t.Errorf("task metrics (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, rep.Total, approx); diff != "" {
				t.Errorf("total metrics (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEarnedValueSkipsUnbaselinedAndSummaries(t *testing.T) {
	t.Parallel()
	s, id := evmStore(t)
	p := mustAdd(t, s, span("phase", jan(1), jan(1)), NoParent)
	mustAdd(t, s, span("new work", jan(8), jan(9)), p)
	if _, err := s.CreateBaseline("second"); err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}

	rep, err := s.EarnedValue("plan", jan(3))
	if err != nil {
		t.Fatalf("EarnedValue: %v", err)
	}
	if len(rep.Tasks) != 1 || rep.Tasks[0].TaskID != id {
		t.Errorf("plan rows = %+v, want only task %d", rep.Tasks, id)
	}

	rep, err = s.EarnedValue("second", jan(3))
	if err != nil {
		t.Fatalf("EarnedValue: %v", err)
	}
	if len(rep.Tasks) != 3 {
		t.Fatalf("second rows = %d, want 3", len(rep.Tasks))
	}
	if !rep.Tasks[1].IsSummary {
		t.Errorf("row %d is not flagged as a summary", rep.Tasks[1].TaskID)
	}
	if rep.Total.BAC != 4000 {
		t.Errorf("Total.BAC = %v, want 4000", rep.Total.BAC)
	}

	if _, err := s.EarnedValue("missing", jan(3)); !errors.Is(err, ErrBaselineNotFound) {
		t.Errorf("EarnedValue(missing) error = %v, want ErrBaselineNotFound", err)
	}
}
