// Completion: 100% - Machine configuration complete, builtins + TOML override
package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Cpu identifies a target CPU family.
type Cpu int

const (
	CpuUnknown Cpu = iota
	Cpu6502
	CpuZ80
	Cpu6809
)

func (c Cpu) String() string {
	switch c {
	case Cpu6502:
		return "6502"
	case CpuZ80:
		return "z80"
	case Cpu6809:
		return "6809"
	default:
		return "unknown"
	}
}

// ParseCpu parses a CPU family name.
func ParseCpu(s string) (Cpu, error) {
	switch strings.ToLower(s) {
	case "6502", "6510", "mos6502":
		return Cpu6502, nil
	case "z80", "zilog80":
		return CpuZ80, nil
	case "6809", "mc6809", "m6809":
		return Cpu6809, nil
	default:
		return 0, fmt.Errorf("unsupported cpu: %s (supported: 6502, z80, 6809)", s)
	}
}

// AreaConfig describes one address-space region of a machine.
type AreaConfig struct {
	Name      string `toml:"name"`
	Dedicated bool   `toml:"dedicated"`
	Start     int    `toml:"start"`
	Size      int    `toml:"size"`
}

// Machine is a target machine: a CPU family plus its memory map. The map is
// a priority-ordered area list; allocation walks it first-fit.
type Machine struct {
	Name     string
	CPU      Cpu
	AreaDefs []AreaConfig
}

// Areas instantiates fresh MemoryArea state for one compilation run.
func (m *Machine) Areas() []*MemoryArea {
	areas := make([]*MemoryArea, 0, len(m.AreaDefs))
	for _, a := range m.AreaDefs {
		kind := AreaGeneral
		if a.Dedicated {
			kind = AreaDedicated
		}
		areas = append(areas, NewMemoryArea(a.Name, kind, a.Start, a.Size))
	}
	return areas
}

// machineFile is the TOML shape of a user-supplied machine definition:
//
//	[machine]
//	name = "mycomputer"
//	cpu = "z80"
//
//	[[area]]
//	name = "main"
//	start = 0x8000
//	size = 0x4000
type machineFile struct {
	Machine struct {
		Name string `toml:"name"`
		CPU  string `toml:"cpu"`
	} `toml:"machine"`
	Area []AreaConfig `toml:"area"`
}

// LoadMachineFile parses and validates a machine definition from a TOML file.
func LoadMachineFile(path string) (*Machine, error) {
	var mf machineFile
	if _, err := toml.DecodeFile(path, &mf); err != nil {
		return nil, compileErr(ErrConfig, "cannot read machine file %s: %v", path, err)
	}
	if mf.Machine.Name == "" {
		return nil, compileErr(ErrConfig, "%s: [machine] name is missing", path)
	}
	cpu, err := ParseCpu(mf.Machine.CPU)
	if err != nil {
		return nil, compileErr(ErrConfig, "%s: %v", path, err)
	}
	if len(mf.Area) == 0 {
		return nil, compileErr(ErrConfig, "%s: at least one [[area]] is required", path)
	}
	for _, a := range mf.Area {
		if a.Name == "" || a.Size <= 0 {
			return nil, compileErr(ErrConfig, "%s: area %q needs a name and a positive size", path, a.Name)
		}
	}
	return &Machine{Name: mf.Machine.Name, CPU: cpu, AreaDefs: mf.Area}, nil
}

// builtinMachines holds the known memory maps, keyed by machine name.
var builtinMachines = map[string]*Machine{
	"c64": {
		Name: "c64", CPU: Cpu6502,
		AreaDefs: []AreaConfig{
			{Name: "lowram", Start: 0x0800, Size: 0x3800},
			{Name: "himem", Start: 0xC000, Size: 0x1000},
			{Name: "gfxbank", Dedicated: true, Start: 0xA000, Size: 0x2000},
		},
	},
	"vic20": {
		Name: "vic20", CPU: Cpu6502,
		AreaDefs: []AreaConfig{
			{Name: "main", Start: 0x1000, Size: 0x0E00},
			{Name: "resbank", Dedicated: true, Start: 0x2000, Size: 0x2000},
		},
	},
	"atarixl": {
		Name: "atarixl", CPU: Cpu6502,
		AreaDefs: []AreaConfig{
			{Name: "main", Start: 0x2000, Size: 0x7000},
			{Name: "resbank", Dedicated: true, Start: 0x9000, Size: 0x2000},
		},
	},
	"spectrum48": {
		Name: "spectrum48", CPU: CpuZ80,
		AreaDefs: []AreaConfig{
			{Name: "main", Start: 0x8000, Size: 0x6000},
			{Name: "resbank", Dedicated: true, Start: 0xE000, Size: 0x1B00},
		},
	},
	"msx1": {
		Name: "msx1", CPU: CpuZ80,
		AreaDefs: []AreaConfig{
			{Name: "main", Start: 0xC000, Size: 0x2000},
			{Name: "resbank", Dedicated: true, Start: 0xE000, Size: 0x1000},
		},
	},
	"dragon32": {
		Name: "dragon32", CPU: Cpu6809,
		AreaDefs: []AreaConfig{
			{Name: "main", Start: 0x1800, Size: 0x5000},
			{Name: "resbank", Dedicated: true, Start: 0x6800, Size: 0x1000},
		},
	},
	"coco3": {
		Name: "coco3", CPU: Cpu6809,
		AreaDefs: []AreaConfig{
			{Name: "main", Start: 0x2000, Size: 0x5000},
			{Name: "resbank", Dedicated: true, Start: 0x7000, Size: 0x1000},
		},
	},
}

// BuiltinMachine resolves one of the known machine names.
func BuiltinMachine(name string) (*Machine, error) {
	if m, ok := builtinMachines[strings.ToLower(name)]; ok {
		return m, nil
	}
	known := make([]string, 0, len(builtinMachines))
	for k := range builtinMachines {
		known = append(known, k)
	}
	return nil, compileErr(ErrConfig, "unknown machine %q (built in: %s)", name, strings.Join(known, ", "))
}

// TestMachine returns a small synthetic machine for unit tests.
func TestMachine(cpu Cpu) *Machine {
	return &Machine{
		Name: "test", CPU: cpu,
		AreaDefs: []AreaConfig{
			{Name: "zp", Start: 0x0010, Size: 0x00E0},
			{Name: "main", Start: 0x2000, Size: 0x4000},
			{Name: "resbank", Dedicated: true, Start: 0x8000, Size: 0x2000},
		},
	}
}
