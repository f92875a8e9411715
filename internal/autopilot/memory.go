package autopilot

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
)

const maxRecords = 50

// CycleRecord captures what happened in a single autopilot cycle.
type CycleRecord struct {
	Time        uint64 `json:"time"`
	CrisisLevel string `json:"crisis_level"`
	TotalCash   string `json:"total_cash"`
	Planned     int    `json:"planned"`
	Accepted    int    `json:"accepted"`
	Rationale   string `json:"rationale,omitempty"`
}

// CycleMemory manages a ring of recent autopilot cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
}

// LoadMemory reads the memory file from disk. Returns empty memory if not found.
func LoadMemory(path string) *CycleMemory {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("autopilot memory unreadable, starting fresh", "path", path, "error", err)
		}
		return &CycleMemory{}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("autopilot memory corrupted, starting fresh", "error", err)
		return &CycleMemory{}
	}
	return &mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// AcceptRate is the share of planned actions the world accepted over the
// remembered cycles. Zero when nothing was planned.
func (m *CycleMemory) AcceptRate() float64 {
	planned, accepted := 0, 0
	for _, r := range m.Records {
		planned += r.Planned
		accepted += r.Accepted
	}
	if planned == 0 {
		return 0
	}
	return float64(accepted) / float64(planned)
}
