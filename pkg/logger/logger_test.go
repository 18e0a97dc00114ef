package logger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type entry struct {
	Level   string
	Message string
	KeyVals []any
}

type recorder struct {
	entries []entry
}

func (r *recorder) record(level, message string, keyvals []any) {
	r.entries = append(r.entries, entry{Level: level, Message: message, KeyVals: keyvals})
}

func (r *recorder) Log(m string, kv ...any)   { r.record("log", m, kv) }
func (r *recorder) Debug(m string, kv ...any) { r.record("debug", m, kv) }
func (r *recorder) Info(m string, kv ...any)  { r.record("info", m, kv) }
func (r *recorder) Warn(m string, kv ...any)  { r.record("warn", m, kv) }
func (r *recorder) Error(m string, kv ...any) { r.record("error", m, kv) }
func (r *recorder) Fatal(m string, kv ...any) { r.record("fatal", m, kv) }

func TestDispatchToAllBackends(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Init(a, b)
	t.Cleanup(func() { Init() })

	Log("[Test] plain", "k", 1)
	Info("[Test] info", "run", "r1")
	Warn("[Test] warn")

	want := []entry{
		{Level: "log", Message: "[Test] plain", KeyVals: []any{"k", 1}},
		{Level: "info", Message: "[Test] info", KeyVals: []any{"run", "r1"}},
		{Level: "warn", Message: "[Test] warn"},
	}
	for _, r := range []*recorder{a, b} {
		if diff := cmp.Diff(want, r.entries); diff != "" {
			t.Fatalf("entries mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestNoBackendsIsNoop(t *testing.T) {
	Init()
	Info("[Test] dropped")
	Error("[Test] dropped", "err", "x")
}
