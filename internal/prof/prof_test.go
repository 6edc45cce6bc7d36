package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCPUProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")
	if err := StartCPU(path); err != nil {
		t.Fatalf("StartCPU: %v", err)
	}
	StopCPU()

	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("profile file missing: %v", err)
	}
	if st.Size() == 0 {
		t.Fatal("profile file is empty")
	}
}

func TestWriteMem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.pprof")
	if err := WriteMem(path); err != nil {
		t.Fatalf("WriteMem: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("profile file missing: %v", err)
	}
	if st.Size() == 0 {
		t.Fatal("profile file is empty")
	}
}
