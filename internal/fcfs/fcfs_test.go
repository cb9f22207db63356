package fcfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSchedule_DefaultWorkload(t *testing.T) {
	got, err := Schedule(DefaultWorkload())
	if err != nil {
		t.Fatalf("Schedule() = %v", err)
	}

	want := []struct {
		id, start, completed, turnaround, waiting int
	}{
		{1, 0, 18, 18, 0},
		{2, 18, 20, 17, 15},
		{3, 25, 30, 5, 0},
		{4, 30, 32, 3, 1},
		{5, 33, 40, 7, 0},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		p := got[i]
		if p.ID != w.id || p.Start != w.start || p.Completed != w.completed || p.Turnaround != w.turnaround || p.Waiting != w.waiting {
			t.Errorf("row %d = %+v, want id=%d start=%d ct=%d tat=%d wt=%d",
				i, p, w.id, w.start, w.completed, w.turnaround, w.waiting)
		}
	}

	if avg := AverageWaiting(got); avg != 3.2 {
		t.Errorf("AverageWaiting = %v, want 3.2", avg)
	}
	if avg := AverageTurnaround(got); avg != 10 {
		t.Errorf("AverageTurnaround = %v, want 10", avg)
	}
}

func TestSchedule_SortsByArrivalStable(t *testing.T) {
	in := []Process{
		{ID: 3, Arrival: 4, Burst: 1},
		{ID: 1, Arrival: 0, Burst: 2},
		{ID: 2, Arrival: 0, Burst: 3},
	}
	got, err := Schedule(in)
	if err != nil {
		t.Fatal(err)
	}
	order := []int{got[0].ID, got[1].ID, got[2].ID}
	if order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
	if in[0].ID != 3 {
		t.Error("Schedule modified its input")
	}
	if got[2].Start != 5 || got[2].Waiting != 1 {
		t.Errorf("P3 start=%d wait=%d, want 5 and 1", got[2].Start, got[2].Waiting)
	}
}

func TestSchedule_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		procs []Process
	}{
		{"negative arrival", []Process{{ID: 1, Arrival: -1, Burst: 2}}},
		{"zero burst", []Process{{ID: 1, Arrival: 0, Burst: 0}}},
		{"negative burst", []Process{{ID: 1, Arrival: 0, Burst: -3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Schedule(tt.procs); !errors.Is(err, ErrInvalidProcess) {
				t.Errorf("Schedule() = %v, want ErrInvalidProcess", err)
			}
		})
	}
}

func TestSchedule_Empty(t *testing.T) {
	got, err := Schedule(nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Schedule(nil) = %v, %v, want empty", got, err)
	}
	if AverageWaiting(got) != 0 || AverageTurnaround(got) != 0 {
		t.Error("averages of an empty schedule should be 0")
	}
}

func TestWriteTable(t *testing.T) {
	procs, _ := Schedule(DefaultWorkload())
	var buf bytes.Buffer
	if err := WriteTable(&buf, procs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "PID\tAT\tBT\tCT\tTAT\tWT") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "2\t3\t2\t20\t17\t15\n") {
		t.Errorf("missing P2 row:\n%s", out)
	}
}

func TestWriteGantt_DefaultWorkload(t *testing.T) {
	procs, _ := Schedule(DefaultWorkload())
	var buf bytes.Buffer
	if err := WriteGantt(&buf, procs); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("chart has %d lines, want 4:\n%s", len(lines), buf.String())
	}
	border, body, bottom, axis := lines[0], lines[1], lines[2], lines[3]

	wantBody := "|" + strings.Repeat(" ", 18) + "P1" + strings.Repeat(" ", 18) + "|" +
		"|  P2  |" + "*****" + "|     P3     |" + "|  P4  |" + "*" + "|       P5       |"
	if body != wantBody {
		t.Errorf("body =\n%q\nwant\n%q", body, wantBody)
	}
	if border != strings.Repeat("=", len(body)) || bottom != border {
		t.Errorf("borders do not match body width %d", len(body))
	}

	fields := strings.Fields(axis)
	wantAxis := []string{"0", "18", "20", "25", "30", "32", "33", "40"}
	if strings.Join(fields, " ") != strings.Join(wantAxis, " ") {
		t.Errorf("axis = %v, want %v", fields, wantAxis)
	}
	if !strings.HasSuffix(axis, "40") || len(axis) != len(body) {
		t.Errorf("last completion time should end under the last cell edge: %q", axis)
	}
}

func TestWriteGantt_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGantt(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workload.yaml")
	content := `
processes:
  - id: 1
    arrival: 0
    burst: 2
  - id: 2
    arrival: 3
    burst: 1
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write workload: %v", err)
	}

	procs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if len(procs) != 2 || procs[1].ID != 2 || procs[1].Arrival != 3 || procs[1].Burst != 1 {
		t.Errorf("LoadFile() = %+v", procs)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("processes: []\n"), 0600)

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("processes: [this is: not valid"), 0600)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml")},
		{"no processes", empty},
		{"malformed yaml", bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFile(tt.path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
