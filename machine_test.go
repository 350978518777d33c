package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCpuAliases(t *testing.T) {
	cases := map[string]Cpu{
		"6502":    Cpu6502,
		"6510":    Cpu6502,
		"mos6502": Cpu6502,
		"Z80":     CpuZ80,
		"zilog80": CpuZ80,
		"6809":    Cpu6809,
		"mc6809":  Cpu6809,
		"M6809":   Cpu6809,
	}
	for name, want := range cases {
		got, err := ParseCpu(name)
		if err != nil {
			t.Fatalf("ParseCpu(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseCpu(%q) = %s, want %s", name, got, want)
		}
	}
	if _, err := ParseCpu("8086"); err == nil {
		t.Fatal("expected an error for an unsupported CPU")
	}
}

func TestBuiltinMachineCPUs(t *testing.T) {
	cases := map[string]Cpu{
		"c64":        Cpu6502,
		"vic20":      Cpu6502,
		"atarixl":    Cpu6502,
		"spectrum48": CpuZ80,
		"msx1":       CpuZ80,
		"dragon32":   Cpu6809,
		"coco3":      Cpu6809,
	}
	for name, want := range cases {
		m, err := BuiltinMachine(name)
		if err != nil {
			t.Fatalf("BuiltinMachine(%q): %v", name, err)
		}
		if m.CPU != want {
			t.Fatalf("%s runs a %s, want %s", name, m.CPU, want)
		}
		if len(m.AreaDefs) == 0 {
			t.Fatalf("%s has no memory areas", name)
		}
	}
}

func TestBuiltinMachineUnknown(t *testing.T) {
	_, err := BuiltinMachine("nonexistent")
	if !ErrorIs(err, ErrConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestAreasAreFreshPerRun(t *testing.T) {
	m := TestMachine(Cpu6502)
	first := m.Areas()
	first[0].Free = 0
	first[0].Cursor = 99
	second := m.Areas()
	if second[0].Free != second[0].Size || second[0].Cursor != 0 {
		t.Fatal("Areas must return untouched state per run")
	}
}

func TestDedicatedAreaKind(t *testing.T) {
	areas := TestMachine(Cpu6502).Areas()
	last := areas[len(areas)-1]
	if last.Kind != AreaDedicated {
		t.Fatalf("expected the resource bank to be dedicated, got %s", last.Kind)
	}
	if areas[0].Kind != AreaGeneral {
		t.Fatalf("expected general RAM first, got %s", areas[0].Kind)
	}
}

func TestLoadMachineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	src := `[machine]
name = "custom"
cpu = "z80"

[[area]]
name = "main"
start = 0x8000
size = 0x4000

[[area]]
name = "resbank"
dedicated = true
start = 0xC000
size = 0x1000
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := LoadMachineFile(path)
	if err != nil {
		t.Fatalf("LoadMachineFile: %v", err)
	}
	if m.Name != "custom" || m.CPU != CpuZ80 {
		t.Fatalf("bad machine header: %s/%s", m.Name, m.CPU)
	}
	if len(m.AreaDefs) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(m.AreaDefs))
	}
	if m.AreaDefs[0].Start != 0x8000 || m.AreaDefs[0].Size != 0x4000 {
		t.Fatalf("bad main area: %+v", m.AreaDefs[0])
	}
	if !m.AreaDefs[1].Dedicated {
		t.Fatal("resbank must be dedicated")
	}
}

func TestLoadMachineFileValidation(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"noname.toml": `[machine]
cpu = "z80"

[[area]]
name = "main"
start = 0
size = 16
`,
		"badcpu.toml": `[machine]
name = "m"
cpu = "8086"

[[area]]
name = "main"
start = 0
size = 16
`,
		"noareas.toml": `[machine]
name = "m"
cpu = "z80"
`,
		"badarea.toml": `[machine]
name = "m"
cpu = "z80"

[[area]]
name = "main"
start = 0
size = 0
`,
	}
	for name, src := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadMachineFile(path); !ErrorIs(err, ErrConfig) {
			t.Fatalf("%s: expected a configuration error, got %v", name, err)
		}
	}
}

func TestLoadMachineFileMissing(t *testing.T) {
	_, err := LoadMachineFile(filepath.Join(t.TempDir(), "missing.toml"))
	if !ErrorIs(err, ErrConfig) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}
